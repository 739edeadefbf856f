// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"

	"github.com/poiesic/recall/core"
)

// File reads a single local document. The format is chosen by extension:
// .txt and .md are read verbatim, .pdf and .docx have their plain text
// extracted.
type File struct {
	path string
}

var _ Source = (*File)(nil)

// NewFile creates a file source for path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Name returns the file path.
func (f *File) Name() string { return f.path }

// Load reads the file and returns its text as a single document.
func (f *File) Load(ctx context.Context) ([]core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(f.path)); ext {
	case ".txt", ".md":
		text, err = loadPlainText(f.path)
	case ".pdf":
		text, err = loadPDF(f.path)
	case ".docx":
		text, err = loadDocx(f.path)
	default:
		return nil, fmt.Errorf("%w: extension %q", core.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", core.ErrSourceUnavailable, f.path, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	return []core.Document{{
		Content:  text,
		Metadata: map[string]string{core.MetaSource: f.path},
	}}, nil
}

func loadPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func loadPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

func loadDocx(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", err
	}

	doc, err := docx.Parse(file, info.Size())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch block := item.(type) {
		case *docx.Paragraph:
			sb.WriteString(block.String())
			sb.WriteString("\n")
		case *docx.Table:
			sb.WriteString(block.String())
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
