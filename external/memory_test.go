package external

import "testing"

func TestExceptionKindString(t *testing.T) {
	cases := map[ExceptionKind]string{
		ExceptionUndefinedInstruction: "UndefinedInstruction",
		ExceptionCheckHalt:            "CheckHalt",
		ExceptionKind(200):            "ExceptionKind(?)",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
