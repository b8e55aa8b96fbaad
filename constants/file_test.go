package constants

import "testing"

func TestDetectFileType(t *testing.T) {
	cases := []struct {
		filename string
		want     FileType
	}{
		{"data.csv", FileTypeCSV},
		{"Report.CSV", FileTypeCSV},
		{"book.xlsx", FileTypeExcel},
		{"legacy.xls", FileTypeExcel},
		{"records.json", FileTypeJSON},
		{"invoice.pdf", FileTypePDF},
		{"scan.jpg", FileTypeImage},
		{"scan.jpeg", FileTypeImage},
		{"photo.png", FileTypeImage},
		{"anim.gif", FileTypeImage},
		{"pic.webp", FileTypeImage},
		{"notes.txt", FileTypeText},
		{"mystery.dat", FileTypeText},
		{"noextension", FileTypeText},
		{"archive.tar.csv", FileTypeCSV},
	}
	for _, tc := range cases {
		if got := DetectFileType(tc.filename); got != tc.want {
			t.Errorf("DetectFileType(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestNormalizeExt(t *testing.T) {
	if got := NormalizeExt(".CSV"); got != "csv" {
		t.Errorf("NormalizeExt(.CSV) = %q, want csv", got)
	}
	if got := NormalizeExt("xlsx"); got != "xlsx" {
		t.Errorf("NormalizeExt(xlsx) = %q, want xlsx", got)
	}
}

func TestIsStructured(t *testing.T) {
	structured := []FileType{FileTypeCSV, FileTypeExcel, FileTypeJSON}
	for _, ft := range structured {
		if !IsStructured(ft) {
			t.Errorf("IsStructured(%q) = false, want true", ft)
		}
	}
	unstructured := []FileType{FileTypePDF, FileTypeImage, FileTypeText}
	for _, ft := range unstructured {
		if IsStructured(ft) {
			t.Errorf("IsStructured(%q) = true, want false", ft)
		}
	}
}
