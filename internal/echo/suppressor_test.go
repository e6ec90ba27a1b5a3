package echo

import "testing"

func TestSuppressorDetectsRecentlyPlayedAudio(t *testing.T) {
	s := NewSuppressor(16000, 2.0)

	played := make([]float32, 400)
	for i := range played {
		played[i] = float32(i%50) / 50.0
	}
	s.RecordPlayed(played)

	if !s.IsEcho(played[:200]) {
		t.Fatalf("expected played-back samples to be detected as echo")
	}
}

func TestSuppressorIgnoresUnrelatedAudio(t *testing.T) {
	s := NewSuppressor(16000, 2.0)

	played := make([]float32, 400)
	for i := range played {
		played[i] = float32(i%50) / 50.0
	}
	s.RecordPlayed(played)

	unrelated := make([]float32, 200)
	for i := range unrelated {
		if i%2 == 0 {
			unrelated[i] = 1
		} else {
			unrelated[i] = -1
		}
	}

	if s.IsEcho(unrelated) {
		t.Fatalf("expected unrelated audio not to be flagged as echo")
	}
}

func TestSuppressorDisabled(t *testing.T) {
	s := NewSuppressor(16000, 2.0)
	s.SetEnabled(false)

	played := []float32{0.5, 0.5, 0.5, 0.5}
	s.RecordPlayed(played)

	if s.IsEcho(played) {
		t.Fatalf("expected disabled suppressor never to report echo")
	}
}

func TestSuppressorClear(t *testing.T) {
	s := NewSuppressor(16000, 2.0)

	played := make([]float32, 400)
	for i := range played {
		played[i] = float32(i%50) / 50.0
	}
	s.RecordPlayed(played)
	s.Clear()

	if s.IsEcho(played[:200]) {
		t.Fatalf("expected cleared suppressor to report no echo")
	}
}
