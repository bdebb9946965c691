// SPDX-License-Identifier: MPL-2.0

package platform

// Operating system names as reported by runtime.GOOS. Kept here so path
// and filename handling compares against one set of constants.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)
