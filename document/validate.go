package document

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/nedb/storeerr"
)

// CheckObject recursively rejects keys containing "." or starting with "$",
// applied before insertion. The internal persistence markers ($$deleted
// tombstones and the $$indexCreated/$$indexRemoved index markers) travel
// only through the external persistence channel and are never passed
// through CheckObject.
func CheckObject(v interface{}) error {
	switch t := v.(type) {
	case D:
		for k, val := range t {
			if strings.Contains(k, ".") {
				return fmt.Errorf("%w: key %q contains \".\"", storeerr.ErrInvalidDocument, k)
			}
			if strings.HasPrefix(k, "$") {
				return fmt.Errorf("%w: key %q starts with \"$\"", storeerr.ErrInvalidDocument, k)
			}
			if err := CheckObject(val); err != nil {
				return err
			}
		}
	case A:
		for _, val := range t {
			if err := CheckObject(val); err != nil {
				return err
			}
		}
	}
	return nil
}
