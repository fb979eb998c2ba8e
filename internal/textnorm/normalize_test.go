package textnorm

import (
	"testing"
	"unicode/utf8"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain ascii", "abc", "abc"},
		{"circled one", "①abc", "1. abc"},
		{"circled twenty", "⑳項目", "20. 項目"},
		{"fullwidth digits", "１２３", "123"},
		{"fullwidth letters", "ＡＢＣ", "ABC"},
		{"halfwidth katakana", "ｶﾀｶﾅ", "カタカナ"},
		{"ascii tilde", "2018 ~ 2020", "2018～2020"},
		{"wave dash", "2018〜2020", "2018～2020"},
		{"heisei year only", "平成30年", "2018"},
		{"reiwa first year", "令和元年", "2019"},
		{"heisei fiscal year", "平成30年度", "2018年度"},
		{"letter abbreviation", "H30年度", "2018年度"},
		{"reiwa letter", "R2", "2020"},
		{"showa", "昭和64年1月", "1989年1月"},
		{"meiji", "明治元年から", "1868年から"},
		{"taisho", "大正15年", "1926"},
		{"era range", "平成27～30年度", "2015～2018年度"},
		{"era range with spaces", "H27 〜 30", "2015～2018"},
		{"letter glued to word", "PM2.5", "PM2.5"},
		{"era followed by digit", "H300", "H300"},
		{"bare reiwa year", "5年度", "2023年度"},
		{"bare heisei year", "30年度", "2018年度"},
		{"bare threshold boundary", "6年度", "1994年度"},
		{"gregorian fiscal year", "2019年度", "2019年度"},
		{"three digit fiscal year", "123年度", "123年度"},
		{"katakana prolonged mark", "グル-プ", "グループ"},
		{"katakana minus sign", "デ−タ", "データ"},
		{"japanese line wrap", "予算の状況-当初予算", "予算の状況当初予算"},
		{"kanji and hiragana wrap", "事業-の目的", "事業の目的"},
		{"hyphen next to digit", "事業番号-1", "事業番号-1"},
		{"fullwidth hyphen to ascii", "A－B", "A-B"},
		{"en dash to ascii", "A–B", "A-B"},
		{"protected phrase", "支出先上位10者リスト-グループ-支出先-1", "支出先上位10者リスト-グループ-支出先-1"},
		{"misspelled protected phrase", "支出先上位10者リスト-グル-プ-支出先-1", "支出先上位10者リスト-グループ-支出先-1"},
		{"trims", "  事業名 \n", "事業名"},
		{"heisei year with trailing space", "平成30年 ", "2018"},
		{"era joined by line wrap", "平-成30年", "2018"},
		{"reiwa joined by line wrap", "令和-元年度", "2019年度"},
		{"showa joined by line wrap", "昭-和64年", "1989"},
		{"private use rune before protected phrase", "\uE000リスト-グループ-支出先", "\uE000リスト-グループ-支出先"},
		{"private use rune between phrases", "リスト-グループ\uE000リスト-グル-プ-1", "リスト-グループ\uE000リスト-グループ-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

var idempotentInputs = []string{
	"①事業の目的（目指す姿を簡潔に。3行程度以内）",
	"予算額・執行額-予算の状況-当初予算-平成30年度",
	"予算額・執行額(単位:百万円)-2019年度-要求予算の状況-当初予算",
	"費目・使途（「資金の流れ」においてブロックごとに最大10）-A.支払先費目-1",
	"支出先上位10者リスト-グル-プ-支出先-10",
	"H27〜R2",
	"令和元年",
	"平成30年",
	"5年度",
	"ｶﾀｶﾅ－テキスト",
	"  spaced ～ text  ",
	"PM2.5の削減",
	"平-成30年",
	"令和-元年度",
	"昭-和64年",
	"平成-27～令-和2年度",
	"平成30年 ",
	"\uE000リスト-グループ",
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range idempotentInputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func FuzzNormalize(f *testing.F) {
	for _, in := range idempotentInputs {
		f.Add(in)
	}
	for _, in := range []string{"①abc", "ｶﾀｶﾅ", "H27 〜 30", "PM2.5", "H300", "30年度", "グル-プ", "A－B", "事業-の目的", "  事業名 \n"} {
		f.Add(in)
	}

	f.Fuzz(func(t *testing.T, s string) {
		if !utf8.ValidString(s) {
			t.Skip("cells are sanitized to UTF-8 before normalization")
		}
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(%q) = %q, but Normalize of that = %q", s, once, twice)
		}
	})
}

func TestNormalizer_ReiwaThreshold(t *testing.T) {
	tests := []struct {
		threshold int
		input     string
		want      string
	}{
		{5, "6年度", "1994年度"},
		{6, "6年度", "2024年度"},
		{0, "5年度", "2023年度"},
	}

	for _, tt := range tests {
		n := New(tt.threshold)
		if got := n.Normalize(tt.input); got != tt.want {
			t.Errorf("New(%d).Normalize(%q) = %q, want %q", tt.threshold, tt.input, got, tt.want)
		}
	}
}
