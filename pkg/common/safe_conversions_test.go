package common

import "testing"

func TestSafeIntToUint32(t *testing.T) {
	if v, err := SafeIntToUint32(45000); err != nil || v != 45000 {
		t.Errorf("SafeIntToUint32(45000) = %d, %v", v, err)
	}
	if _, err := SafeIntToUint32(-1); err == nil {
		t.Error("SafeIntToUint32(-1) should fail")
	}
}

func TestSafeAddress(t *testing.T) {
	testCases := []struct {
		value   int
		wantErr bool
	}{
		{0, false},
		{150, false},
		{MaxAddress, false},
		{MaxAddress + 1, true},
		{-150, true},
	}

	for _, tc := range testCases {
		v, err := SafeAddress(tc.value)
		if (err != nil) != tc.wantErr {
			t.Errorf("SafeAddress(%d) error = %v, wantErr %v", tc.value, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && int(v) != tc.value {
			t.Errorf("SafeAddress(%d) = %d", tc.value, v)
		}
	}
}
