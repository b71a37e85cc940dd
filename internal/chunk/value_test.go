package chunk

import "testing"

func TestParseEmpty(t *testing.T) {
	v := Parse(0)
	if v.Kind != KindEmpty {
		t.Fatalf("Parse(0).Kind = %v, want KindEmpty", v.Kind)
	}
}

func TestParseSentinel(t *testing.T) {
	v := Parse(SentinelWord)
	if v.Kind != KindSentinel {
		t.Fatalf("Parse(1).Kind = %v, want KindSentinel", v.Kind)
	}
}

func TestParsePrime(t *testing.T) {
	raw := HI | 0x42
	v := Parse(raw)
	if v.Kind != KindPrime {
		t.Fatalf("Parse(HI|0x42).Kind = %v, want KindPrime", v.Kind)
	}
	if v.Payload != 0x42 {
		t.Fatalf("Payload = %#x, want 0x42", v.Payload)
	}
}

func TestParseLive(t *testing.T) {
	v := Parse(7)
	if v.Kind != KindLive {
		t.Fatalf("Parse(7).Kind = %v, want KindLive", v.Kind)
	}
	if v.Payload != 7 {
		t.Fatalf("Payload = %d, want 7", v.Payload)
	}
}

func TestMaskPayloadClearsPrimeBit(t *testing.T) {
	if got := MaskPayload(HI | 5); got != 5 {
		t.Fatalf("MaskPayload(HI|5) = %#x, want 5", got)
	}
}

func TestPrimedAndStrippedRoundTrip(t *testing.T) {
	raw := uint64(99)
	primed := Primed(raw)
	if Parse(primed).Kind != KindPrime {
		t.Fatalf("Primed value did not parse as KindPrime")
	}
	if Stripped(primed) != raw {
		t.Fatalf("Stripped(Primed(raw)) = %d, want %d", Stripped(primed), raw)
	}
}
