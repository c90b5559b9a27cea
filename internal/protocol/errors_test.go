package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	for _, code := range []string{
		"", ErrProtoBadRequest, ErrProtoVersion, ErrMatchFull,
		ErrMatchOver, ErrSlotTaken, ErrRateLimit, ErrInternal,
	} {
		if !IsKnownCode(code) {
			t.Errorf("IsKnownCode(%q) = false", code)
		}
	}
	if IsKnownCode("E_NOT_A_CODE") {
		t.Error("unknown code accepted")
	}
}

func TestInputMaskExcludesDisconnect(t *testing.T) {
	if InputMask&InputDisconnect != 0 {
		t.Fatal("clients must not be able to set the disconnect bit")
	}
	if InputMask != InputLeft|InputRight|InputFlap {
		t.Fatal("mask must cover exactly the control bits")
	}
}
