package i18n

import "testing"

func TestUnlocalizedIgnoresLocale(t *testing.T) {
	tr := New("fr", false)
	if got := tr.Translate("issue-title-error"); got != "Please enter a title" {
		t.Errorf("Translate = %q", got)
	}
}

func TestLocalizedFrench(t *testing.T) {
	tr := New("fr-CA,fr;q=0.9,en;q=0.5", true)
	if got := tr.Translate("issue-cancel-button"); got != "Annuler" {
		t.Errorf("Translate = %q", got)
	}
}

func TestUnknownLocaleFallsBackToEnglish(t *testing.T) {
	tr := New("ja", true)
	if got := tr.Translate("invoice"); got != "Invoice" {
		t.Errorf("Translate = %q", got)
	}
	if got := New("", true).Translate("name"); got != "Issue tracker" {
		t.Errorf("empty locale Translate = %q", got)
	}
}

func TestUnknownKey(t *testing.T) {
	if got := New("en", true).Translate("nope"); got != "nope" {
		t.Errorf("Translate = %q", got)
	}
}

func TestCatalogsShareKeys(t *testing.T) {
	for tag, msgs := range catalogs {
		for k := range defaults {
			if _, ok := msgs[k]; !ok {
				t.Errorf("%s catalog missing %q", tag, k)
			}
		}
	}
}
