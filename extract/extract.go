// Package extract turns uploaded binary documents into plain UTF-8 text for
// the chunker. It is stateless; each call works on one file's bytes.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"rag/types"
)

// File extracts text from data based on the file extension of name.
func File(name string, data []byte) (*types.ExtractResult, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return PDF(data)
	case ".docx":
		return DOCX(data)
	case ".pptx":
		return PPTX(data)
	default:
		return nil, types.ErrUnsupportedFormat
	}
}

// DOCX extracts paragraph text from word/document.xml.
func DOCX(data []byte) (*types.ExtractResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %v", types.ErrExtractionFailed, err)
	}

	paragraphs, err := wordParagraphs(reader)
	if err != nil {
		return nil, err
	}
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("%w: docx has no text", types.ErrExtractionFailed)
	}

	return &types.ExtractResult{
		Content: strings.Join(paragraphs, "\n\n"),
		Units:   len(paragraphs),
		Type:    "docx",
	}, nil
}

func wordParagraphs(reader *zip.Reader) ([]string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrExtractionFailed, err)
		}
		defer rc.Close()

		var paragraphs []string
		var current strings.Builder
		inText := false

		decoder := xml.NewDecoder(rc)
		for {
			tok, err := decoder.Token()
			if err != nil {
				break
			}
			switch t := tok.(type) {
			case xml.StartElement:
				if t.Name.Local == "t" {
					inText = true
				}
			case xml.EndElement:
				switch t.Name.Local {
				case "t":
					inText = false
				case "p":
					if text := strings.TrimSpace(current.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
					current.Reset()
				case "tab":
					current.WriteByte('\t')
				}
			case xml.CharData:
				if inText {
					current.Write(t)
				}
			}
		}
		return paragraphs, nil
	}
	return nil, fmt.Errorf("%w: word/document.xml missing", types.ErrExtractionFailed)
}

// PPTX extracts shape text from every slide, slides in order and prefixed
// with a "--- Slide N ---" header.
func PPTX(data []byte) (*types.ExtractResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a pptx archive: %v", types.ErrExtractionFailed, err)
	}

	var slides []*zip.File
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, "ppt/slides/slide") && strings.HasSuffix(file.Name, ".xml") {
			slides = append(slides, file)
		}
	}
	sort.Slice(slides, func(i, j int) bool {
		return slideNumber(slides[i].Name) < slideNumber(slides[j].Name)
	})

	var sections []string
	for i, slide := range slides {
		texts, err := slideTexts(slide)
		if err != nil {
			return nil, err
		}
		if len(texts) == 0 {
			continue
		}
		section := fmt.Sprintf("--- Slide %d ---\n%s", i+1, strings.Join(texts, "\n"))
		sections = append(sections, section)
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: pptx has no text", types.ErrExtractionFailed)
	}

	return &types.ExtractResult{
		Content: strings.Join(sections, "\n\n"),
		Units:   len(slides),
		Type:    "pptx",
	}, nil
}

func slideNumber(name string) int {
	var n int
	fmt.Sscanf(name, "ppt/slides/slide%d.xml", &n)
	return n
}

func slideTexts(file *zip.File) ([]string, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrExtractionFailed, err)
	}
	defer rc.Close()

	var texts []string
	inText := false

	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				if text := strings.TrimSpace(string(t)); text != "" {
					texts = append(texts, text)
				}
			}
		}
	}
	return texts, nil
}
