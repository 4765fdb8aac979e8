package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	qerrors "github.com/qforge/qtopo/pkg/errors"
)

// validate is the shared validator instance; struct tag rules live on the
// types in types.go.
var validate = validator.New()

// Decode parses and validates a snapshot payload. A malformed payload or a
// structurally invalid snapshot returns an IMPORT_ERROR; per-item problems
// (unknown kinds, dangling references) are left for the importer, which
// handles them best-effort.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeImport, err, "malformed snapshot payload")
	}
	if err := validate.Struct(&s); err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeImport, formatValidationError(err), "invalid snapshot structure")
	}
	return &s, nil
}

// formatValidationError condenses validator output to the first offending
// field, which is what a user can act on.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("field %s failed rule %q", fe.Namespace(), fe.Tag())
	}
	return err
}
