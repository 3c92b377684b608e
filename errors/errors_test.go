package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:      PhaseLower,
				Kind:       KindConversion,
				Path:       []string{"tag", "title"},
				GoType:     "string",
				NativeType: "latin1",
				Detail:     "cannot convert",
			},
			contains: []string{"[lower]", "conversion", "tag.title", "string", "latin1", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLift,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[lift]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseSave,
				Kind:   KindIO,
				Detail: "write tags",
				Cause:  errors.New("disk full"),
			},
			contains: []string{"[save]", "io", "write tags", "caused by", "disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseRuntime,
		Kind:  KindIO,
		Cause: cause,
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestError_Is(t *testing.T) {
	a := &Error{Phase: PhaseRuntime, Kind: KindInvalidState}
	b := &Error{Phase: PhaseRuntime, Kind: KindInvalidState, Detail: "different detail"}
	c := &Error{Phase: PhaseRuntime, Kind: KindIO}

	if !errors.Is(a, b) {
		t.Error("errors with same phase and kind should match")
	}
	if errors.Is(a, c) {
		t.Error("errors with different kinds should not match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("boom")
	err := New(PhaseLower, KindOverflow).
		Path("artwork", "data").
		GoType("[]byte").
		NativeType("u32").
		Value(int64(1) << 40).
		Cause(cause).
		Detail("payload of %d bytes exceeds guest address space", int64(1)<<40).
		Build()

	if err.Phase != PhaseLower || err.Kind != KindOverflow {
		t.Fatalf("unexpected phase/kind: %v/%v", err.Phase, err.Kind)
	}
	if len(err.Path) != 2 || err.Path[0] != "artwork" {
		t.Errorf("unexpected path: %v", err.Path)
	}
	if err.Cause != cause {
		t.Error("cause not set")
	}
	if !strings.Contains(err.Detail, "exceeds guest address space") {
		t.Errorf("unexpected detail: %q", err.Detail)
	}
}

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{"conversion", Conversion(PhaseConvert, "string", "latin1", "x"), IsConversion, true},
		{"allocation", AllocationFailed(PhaseLower, 16, 1), IsAllocation, true},
		{"io", IO(PhaseSave, "save", nil), IsIO, true},
		{"invalid state", InvalidState("tag.title"), IsInvalidState, true},
		{"embedded nul folds into allocation", EmbeddedNul(PhaseConvert, "path", 0), IsAllocation, true},
		{"invalid utf8 folds into conversion", InvalidUTF8(PhaseConvert, nil, nil), IsConversion, true},
		{"wrong kind", InvalidState("tag.title"), IsIO, false},
		{"plain error", errors.New("plain"), IsInvalidState, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.err); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvenienceConstructors(t *testing.T) {
	if e := EmbeddedNul(PhaseConvert, "path", 3); !strings.Contains(e.Error(), "NUL byte at index 3") {
		t.Errorf("EmbeddedNul: %v", e)
	}
	if e := MissingExport("tb_file_new"); !strings.Contains(e.Error(), "tb_file_new") {
		t.Errorf("MissingExport: %v", e)
	}
	if e := InvalidUTF8(PhaseConvert, nil, []byte{0xff, 0xfe}); !strings.Contains(e.Error(), "fffe") {
		t.Errorf("InvalidUTF8: %v", e)
	}
	if e := NotFound(PhaseRuntime, "tag", "file"); !strings.Contains(e.Error(), `tag "file" not found`) {
		t.Errorf("NotFound: %v", e)
	}
}
