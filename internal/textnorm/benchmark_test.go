package textnorm

import "testing"

// BenchmarkNormalize runs the full rule set over typical review sheet cells.
// Every header and data cell passes through here once per run.
func BenchmarkNormalize(b *testing.B) {
	cells := []string{
		"①調査研究　②普及啓発",
		"平成27年度～平成30年度",
		"令和元年度",
		"予算額・執行額(百万円)-予算の状況計-2019年度",
		"ＡＢＣ－１２３",
		"内閣府",
		"",
	}
	n := Default()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range cells {
			n.Normalize(c)
		}
	}
}

// BenchmarkNormalize_ASCII benchmarks the common case of plain numeric cells.
func BenchmarkNormalize_ASCII(b *testing.B) {
	n := Default()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.Normalize("12345")
	}
}
