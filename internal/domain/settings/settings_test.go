package settings

import "testing"

func TestDefaults(t *testing.T) {
	d := Defaults()
	if !d.SoundEnabled || d.Volume != 0.7 || d.GraphicsQuality != QualityHigh {
		t.Errorf("Unexpected defaults %+v", d)
	}
}

func TestApply(t *testing.T) {
	cases := []struct {
		key, value string
		check      func(Settings) bool
	}{
		{"soundEnabled", "false", func(s Settings) bool { return !s.SoundEnabled }},
		{"volume", "0.25", func(s Settings) bool { return s.Volume == 0.25 }},
		{"volume", "40%", func(s Settings) bool { return s.Volume == 0.4 }},
		{"volume", "3", func(s Settings) bool { return s.Volume == 1 }},
		{"graphicsQuality", "LOW", func(s Settings) bool { return s.GraphicsQuality == QualityLow }},
	}
	for _, tc := range cases {
		got, err := Defaults().Apply(tc.key, tc.value)
		if err != nil {
			t.Errorf("Apply(%s, %s): %v", tc.key, tc.value, err)
			continue
		}
		if !tc.check(got) {
			t.Errorf("Apply(%s, %s) produced %+v", tc.key, tc.value, got)
		}
	}
}

func TestApplyRejectsBadInput(t *testing.T) {
	bad := [][2]string{{"volume", "loud"}, {"graphicsQuality", "ultra"}, {"soundEnabled", "maybe"}, {"theme", "dark"}}
	for _, kv := range bad {
		if _, err := Defaults().Apply(kv[0], kv[1]); err == nil {
			t.Errorf("Apply(%s, %s): expected error", kv[0], kv[1])
		}
	}
}

func TestNormalize(t *testing.T) {
	s := Settings{Volume: -1, GraphicsQuality: "potato"}.Normalize()
	if s.Volume != 0 || s.GraphicsQuality != QualityHigh {
		t.Errorf("Unexpected normalized settings %+v", s)
	}
}
