// Package document turns uploaded resume files into plain text.
package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/U-Jay-git/ResumeRise/internal/utils"
	pdf "github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedType is returned for file formats that cannot be read.
	ErrUnsupportedType = errors.New("unsupported file type: only pdf, docx and txt are allowed")
	// ErrNoText is returned with an empty string when a readable document
	// contains no text. Callers may go on with the empty text.
	ErrNoText = errors.New("document contains no extractable text")
)

var pdfMagic = []byte("%PDF-")

// Extract returns the plain text of the named file. The format is detected
// from the content for PDF and from the extension otherwise.
func Extract(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); {
	case bytes.HasPrefix(data, pdfMagic) || ext == ".pdf":
		text, err = extractPDF(data)
	case ext == ".docx":
		text, err = extractDocx(data)
	case ext == ".txt" || ext == ".md":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s is not valid UTF-8 text", filename)
		}
		text = string(data)
	default:
		return "", ErrUnsupportedType
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}

	text = utils.CollapseWhitespace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	rs, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return docxText(rc)
	}

	return "", errors.New("no word/document.xml found in docx")
}

// docxText collects the character data of w:t elements, breaking lines at
// paragraph ends.
func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
