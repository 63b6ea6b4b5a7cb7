package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/feichai0017/exam-solver/config"
	"github.com/feichai0017/exam-solver/internal/agent/document/pdf"
	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

// ErrInvalidFile wraps every rejected upload.
var ErrInvalidFile = errors.New("invalid file")

// DocumentValidator 文档验证器
type DocumentValidator struct {
	logger logger.Logger
	config *ValidatorConfig
}

// ValidatorConfig 验证器配置
type ValidatorConfig struct {
	MaxFileSize  int64               // 最大文件大小（字节）
	AllowedTypes map[string][]string // 允许的文件类型 {扩展名: []MIME类型}
	MaxPageCount int                 // PDF最大页数
}

// ValidationResult 验证结果
type ValidationResult struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationError `json:"errors,omitempty"`
	FileInfo FileInfo          `json:"fileInfo"`
}

// ValidationError 验证错误
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// FileInfo 文件信息
type FileInfo struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mimeType"`
	Extension string `json:"extension"`
	Hash      string `json:"hash"`
	PageCount int    `json:"pageCount,omitempty"`
}

// DefaultAllowedTypes lists exam page formats. HEIC and TIFF are not
// recognised by content sniffing, so octet-stream is accepted for them.
func DefaultAllowedTypes() map[string][]string {
	return map[string][]string{
		".pdf":  {"application/pdf"},
		".jpg":  {"image/jpeg"},
		".jpeg": {"image/jpeg"},
		".png":  {"image/png"},
		".webp": {"image/webp"},
		".heic": {"application/octet-stream"},
		".tiff": {"application/octet-stream", "image/tiff"},
	}
}

func NewDocumentValidator(log logger.Logger, cfg *ValidatorConfig) *DocumentValidator {
	if cfg == nil {
		cfg = &ValidatorConfig{
			MaxFileSize:  20 << 20,
			AllowedTypes: DefaultAllowedTypes(),
			MaxPageCount: 50,
		}
	}
	if cfg.AllowedTypes == nil {
		cfg.AllowedTypes = DefaultAllowedTypes()
	}
	return &DocumentValidator{logger: log.Named("validator"), config: cfg}
}

// FromConfig builds a validator from the upload limits.
func FromConfig(log logger.Logger, cfg config.UploadConfig) *DocumentValidator {
	return NewDocumentValidator(log, &ValidatorConfig{
		MaxFileSize:  cfg.MaxFileSize,
		AllowedTypes: DefaultAllowedTypes(),
		MaxPageCount: cfg.MaxPDFPages,
	})
}

// Validate checks one file already read into memory.
func (v *DocumentValidator) Validate(filename string, data []byte) *ValidationResult {
	sum := sha256.Sum256(data)
	result := &ValidationResult{
		IsValid: true,
		FileInfo: FileInfo{
			Filename:  filename,
			Size:      int64(len(data)),
			MimeType:  detectMimeType(data),
			Extension: strings.ToLower(filepath.Ext(filename)),
			Hash:      hex.EncodeToString(sum[:]),
		},
	}

	result.add(v.performBasicValidation(result.FileInfo)...)
	if result.IsValid {
		result.add(v.validateMimeType(result.FileInfo)...)
	}
	if result.IsValid && result.FileInfo.Extension == ".pdf" {
		result.add(v.validatePDF(data, &result.FileInfo)...)
	}
	return result
}

// ReadDocuments reads and validates every uploaded file. The first invalid
// file aborts with an error wrapping ErrInvalidFile.
func (v *DocumentValidator) ReadDocuments(files []*multipart.FileHeader) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(files))
	for _, fh := range files {
		if v.config.MaxFileSize > 0 && fh.Size > v.config.MaxFileSize {
			return nil, fmt.Errorf("%w: %s exceeds maximum size of %d bytes", ErrInvalidFile, fh.Filename, v.config.MaxFileSize)
		}
		data, err := readFile(fh)
		if err != nil {
			return nil, err
		}

		result := v.Validate(fh.Filename, data)
		if !result.IsValid {
			v.logger.Warn("Rejected upload",
				logger.String("filename", fh.Filename),
				logger.String("hash", result.FileInfo.Hash),
				logger.String("reason", result.Errors[0].Code),
			)
			return nil, fmt.Errorf("%w: %s: %s", ErrInvalidFile, fh.Filename, result.Errors[0].Message)
		}

		docs = append(docs, models.Document{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return docs, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (r *ValidationResult) add(errs ...ValidationError) {
	if len(errs) == 0 {
		return
	}
	r.IsValid = false
	r.Errors = append(r.Errors, errs...)
}

// 基本验证
func (v *DocumentValidator) performBasicValidation(info FileInfo) []ValidationError {
	var errs []ValidationError

	if info.Size == 0 {
		errs = append(errs, ValidationError{
			Code:    "EMPTY_FILE",
			Message: "File is empty",
			Field:   "size",
		})
	}
	if v.config.MaxFileSize > 0 && info.Size > v.config.MaxFileSize {
		errs = append(errs, ValidationError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum limit of %d bytes", v.config.MaxFileSize),
			Field:   "size",
		})
	}
	if _, ok := v.config.AllowedTypes[info.Extension]; !ok {
		errs = append(errs, ValidationError{
			Code:    "INVALID_FILE_TYPE",
			Message: fmt.Sprintf("File type %s is not allowed", info.Extension),
			Field:   "extension",
		})
	}
	return errs
}

// MIME类型验证
func (v *DocumentValidator) validateMimeType(info FileInfo) []ValidationError {
	for _, allowed := range v.config.AllowedTypes[info.Extension] {
		if allowed == info.MimeType {
			return nil
		}
	}
	return []ValidationError{{
		Code:    "INVALID_MIME_TYPE",
		Message: fmt.Sprintf("Invalid MIME type %s for extension %s", info.MimeType, info.Extension),
		Field:   "mimeType",
	}}
}

func (v *DocumentValidator) validatePDF(data []byte, info *FileInfo) []ValidationError {
	pages, err := pdf.CountPages(data)
	if err != nil {
		return []ValidationError{{
			Code:    "UNREADABLE_PDF",
			Message: "PDF could not be read",
			Field:   "content",
		}}
	}
	info.PageCount = pages
	if v.config.MaxPageCount > 0 && pages > v.config.MaxPageCount {
		return []ValidationError{{
			Code:    "TOO_MANY_PAGES",
			Message: fmt.Sprintf("PDF has %d pages, maximum is %d", pages, v.config.MaxPageCount),
			Field:   "pageCount",
		}}
	}
	return nil
}

// 检测MIME类型
func detectMimeType(data []byte) string {
	mt := http.DetectContentType(data)
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}
