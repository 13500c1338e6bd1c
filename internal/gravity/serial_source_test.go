package gravity

import (
	"testing"

	nmea "github.com/adrianmo/go-nmea"
)

func parseXDR(t *testing.T, raw string) nmea.XDR {
	t.Helper()
	sentence, err := nmea.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	x, ok := sentence.(nmea.XDR)
	if !ok {
		t.Fatalf("Parse(%q) = %T, want XDR", raw, sentence)
	}
	return x
}

func TestSampleFromXDR(t *testing.T) {
	x := parseXDR(t, "$IIXDR,A,0.61,G,GRAVX,A,0.12,G,GRAVY*4B")

	s := sampleFromXDR(x)
	if s == nil {
		t.Fatal("sampleFromXDR returned nil for a sentence with both axes")
	}
	if s.X != 0.61 || s.Y != 0.12 {
		t.Errorf("sample = %+v, want {0.61 0.12}", s)
	}
}

func TestSampleFromXDRIgnoresOtherTransducers(t *testing.T) {
	x := parseXDR(t, "$IIXDR,C,19.5,C,TEMP,A,0.30,G,GRAVX,A,-0.25,G,GRAVY*79")

	s := sampleFromXDR(x)
	if s == nil {
		t.Fatal("sampleFromXDR returned nil despite both gravity axes present")
	}
	if s.X != 0.30 || s.Y != -0.25 {
		t.Errorf("sample = %+v, want {0.3 -0.25}", s)
	}
}

func TestSampleFromXDRRequiresBothAxes(t *testing.T) {
	x := parseXDR(t, "$IIXDR,A,0.61,G,GRAVX*0B")

	if s := sampleFromXDR(x); s != nil {
		t.Errorf("sampleFromXDR = %+v, want nil for a single-axis sentence", s)
	}
}
