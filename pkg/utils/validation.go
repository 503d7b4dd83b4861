package utils

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var employeeIDPattern = regexp.MustCompile(`^[0-9]{1,9}$`)

// IsEmployeeID reports whether id looks like a device user id.
func IsEmployeeID(id string) bool {
	return employeeIDPattern.MatchString(id)
}

var unsafeName = strings.NewReplacer(" ", "_", "/", "_", `\`, "_", ":", "_")

// SafeName makes a display name usable in file names and document ids.
// Names are NFC normalised first so the same name typed on different
// keyboards maps to the same key.
func SafeName(name string) string {
	return unsafeName.Replace(norm.NFC.String(strings.TrimSpace(name)))
}

// EmployeeKey is the emp_{id}_{name} key shared by the file and document sinks.
func EmployeeKey(id, name string) string {
	return "emp_" + id + "_" + SafeName(name)
}
