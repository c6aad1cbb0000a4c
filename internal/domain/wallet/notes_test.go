package wallet

import (
	"reflect"
	"testing"
)

func TestNotesRoundTrip(t *testing.T) {
	lists := [][]string{
		{},
		{"Штрафов: нет"},
		{"Больничные: 3 дня (ОРВИ)", "Отпуск: 14/28 дней", "Отсутствия: 1 день за свой счёт"},
		{`with "quotes"`, "with, commas"},
	}

	for _, notes := range lists {
		got := DecodeNotes(EncodeNotes(notes))
		if !reflect.DeepEqual(got, notes) {
			t.Fatalf("round trip of %v came back as %v", notes, got)
		}
	}
}

func TestDecodeNotesTolerant(t *testing.T) {
	for _, raw := range []string{"", "not json", "{", "null"} {
		got := DecodeNotes(raw)
		if got == nil || len(got) != 0 {
			t.Fatalf("DecodeNotes(%q) = %v, want empty list", raw, got)
		}
	}
}
