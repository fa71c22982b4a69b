package emulator

import "testing"

// decodeAll feeds bytes one at a time and collects completed scalars.
func decodeAll(d *Decoder, data []byte) []rune {
	var runes []rune
	for _, b := range data {
		if r, status := d.Feed(b); status == DecodeReady {
			runes = append(runes, r)
		}
	}
	return runes
}

func TestDecoderASCII(t *testing.T) {
	var d Decoder
	got := decodeAll(&d, []byte("Hello"))
	if string(got) != "Hello" {
		t.Errorf("decoded %q, want %q", string(got), "Hello")
	}
}

func TestDecoderMultiByte(t *testing.T) {
	var d Decoder
	input := "héllo 中文 😀"
	got := decodeAll(&d, []byte(input))
	if string(got) != input {
		t.Errorf("decoded %q, want %q", string(got), input)
	}
}

func TestDecoderSplitAtEveryBoundary(t *testing.T) {
	input := []byte("a\xc3\xa9\xe4\xb8\xad\xf0\x9f\x98\x80z")
	want := "aé中😀z"

	for split := 0; split <= len(input); split++ {
		var d Decoder
		got := decodeAll(&d, input[:split])
		got = append(got, decodeAll(&d, input[split:])...)
		if string(got) != want {
			t.Errorf("split at %d: decoded %q, want %q", split, string(got), want)
		}
	}
}

func TestDecoderInterruptedSequence(t *testing.T) {
	var d Decoder

	// Start a 3-byte sequence, then interrupt with ASCII.
	if _, status := d.Feed(0xe4); status != DecodeIncomplete {
		t.Fatalf("lead byte status = %v, want DecodeIncomplete", status)
	}
	r, status := d.Feed('x')
	if status != DecodeReady || r != 'x' {
		t.Errorf("interrupting byte = (%q, %v), want ('x', DecodeReady)", r, status)
	}
	if d.Pending() {
		t.Error("decoder should not be pending after an interrupted sequence")
	}
}

func TestDecoderInterruptedByNewLead(t *testing.T) {
	var d Decoder

	d.Feed(0xe4) // 3-byte lead, abandoned
	got := decodeAll(&d, []byte("é"))
	if string(got) != "é" {
		t.Errorf("decoded %q, want %q", string(got), "é")
	}
}

func TestDecoderStrayContinuation(t *testing.T) {
	var d Decoder
	if _, status := d.Feed(0x80); status != DecodeInvalid {
		t.Errorf("stray continuation status = %v, want DecodeInvalid", status)
	}
	// Stream continues undisturbed.
	if r, status := d.Feed('a'); status != DecodeReady || r != 'a' {
		t.Errorf("next byte = (%q, %v), want ('a', DecodeReady)", r, status)
	}
}

func TestDecoderInvalidScalar(t *testing.T) {
	var d Decoder
	// Overlong encoding of '/' (0xc0 0xaf) is not a valid scalar.
	d.Feed(0xc0)
	if _, status := d.Feed(0xaf); status != DecodeInvalid {
		t.Errorf("overlong sequence status = %v, want DecodeInvalid", status)
	}
}

func TestDecoderReset(t *testing.T) {
	var d Decoder
	d.Feed(0xe4)
	d.Reset()
	if d.Pending() {
		t.Error("Pending() = true after Reset")
	}
}
