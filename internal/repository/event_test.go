package repository

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

func TestClassifyInsertErrorDuplicateKey(t *testing.T) {
	err := classifyInsertError(gorm.ErrDuplicatedKey, "e1")
	if !types.IsKind(err, types.KindValidation) {
		t.Fatalf("translated duplicate not classified: %v", err)
	}

	raw := errors.New(`ERROR: duplicate key value violates unique constraint "memory_events_pkey" (SQLSTATE 23505)`)
	err = classifyInsertError(raw, "e1")
	if !types.IsKind(err, types.KindValidation) {
		t.Fatalf("raw unique violation not classified: %v", err)
	}
}

func TestClassifyInsertErrorPassesThroughOtherFailures(t *testing.T) {
	cause := errors.New("connection refused")
	err := classifyInsertError(cause, "e1")
	if types.KindOf(err) != "" {
		t.Fatalf("unrelated failure got classified: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not wrapped: %v", err)
	}
}
