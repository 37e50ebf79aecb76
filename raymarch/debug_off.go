//go:build !hatchdebug

package raymarch

const debug = false
