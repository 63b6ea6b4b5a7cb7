package models

import (
	"fmt"
)

// Document 上传的原始文件
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (d Document) Size() int64 {
	return int64(len(d.Data))
}

// PageImage is one page-equivalent unit handed to the model: a single PDF
// page or a whole image upload. Index is the global position across all
// documents of a job, starting at 0.
type PageImage struct {
	Index      int
	SourceFile string
	SourcePage int
	MIMEType   string
	Data       []byte
}

func (p PageImage) String() string {
	return fmt.Sprintf("%s#%d", p.SourceFile, p.SourcePage)
}

// PageResult holds the outcome of solving one page. Exactly one of Text
// and Err is meaningful.
type PageResult struct {
	PageNumber int
	Text       string
	Err        error
}

func (r PageResult) Failed() bool {
	return r.Err != nil
}
