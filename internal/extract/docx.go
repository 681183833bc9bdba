package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

// DocxExtractor reads the leading body paragraphs of a Word document.
type DocxExtractor struct{}

// NewDocxExtractor creates a DOCX extractor.
func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

func (d *DocxExtractor) Name() string { return "docx" }

func (d *DocxExtractor) CanExtract(filePath string) bool {
	return hasExt(filePath, ".docx")
}

// Extract returns the first pageBudget*3 body paragraphs, each followed by
// a newline. Only top-level body paragraphs are counted.
func (d *DocxExtractor) Extract(filePath string, pageBudget int) (string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBodyPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return readParagraphs(rc, pageBudget*3)
	}

	return "", fmt.Errorf("%s not found in archive", docxBodyPart)
}

// readParagraphs walks WordprocessingML tokens collecting the text of
// paragraphs that are direct children of w:body. Paragraphs nested in
// tables, content controls or text boxes are not counted, and text-box
// paragraphs do not contribute to the paragraph that anchors them.
func readParagraphs(r io.Reader, limit int) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out    strings.Builder
		para   strings.Builder
		stack  []string
		count  int
		nested int
		inPara bool
		inText bool
	)

	for count < limit {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, t.Name.Local)

			own := inPara && nested == 0
			switch t.Name.Local {
			case "p":
				if parent == "body" {
					inPara = true
					para.Reset()
				} else if inPara {
					nested++
				}
			case "t":
				inText = own
			case "tab":
				if own {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if own {
					para.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

			switch t.Name.Local {
			case "p":
				if !inPara {
					break
				}
				if nested > 0 {
					nested--
					break
				}
				out.WriteString(para.String())
				out.WriteByte('\n')
				count++
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	return out.String(), nil
}
