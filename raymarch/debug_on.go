//go:build hatchdebug

package raymarch

// debug enables assertions of engine preconditions such as positive depth of projected points.
const debug = true
