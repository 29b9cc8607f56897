package models

import "testing"

func TestParseAlarmState(t *testing.T) {
	t.Parallel()

	cases := map[string]AlarmState{
		"ARMED_AWAY":   AlarmArmedAway,
		" armed_away ": AlarmArmedAway,
		"DISARMED":     AlarmDisarmed,
		"ARMED_HOME":   AlarmOther,
		"":             AlarmUnknown,
		"PARTIAL???":   AlarmUnknown,
	}
	for in, want := range cases {
		if got := ParseAlarmState(in); got != want {
			t.Errorf("ParseAlarmState(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAction_Valid(t *testing.T) {
	t.Parallel()

	for _, a := range []Action{ActionStart, ActionStop, ActionPause} {
		if !a.Valid() {
			t.Errorf("%q should be valid", a)
		}
	}
	if Action("dock").Valid() {
		t.Errorf("dock should not be a valid action")
	}
}
