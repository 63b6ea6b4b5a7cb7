package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SolutionRecord 已解答试卷
type SolutionRecord struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	OriginalURL string    `json:"original_url"`
	SolutionURL string    `json:"solution_url"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (SolutionRecord) TableName() string { return "solutions" }

func (r *SolutionRecord) BeforeCreate(*gorm.DB) error {
	r.EnsureID()
	return nil
}

func (r *SolutionRecord) EnsureID() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

// EvaluationRecord 学生答卷评分结果，隶属于一份试卷
type EvaluationRecord struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PaperID       string    `gorm:"index;not null;type:varchar(36)" json:"paper_id"`
	StudentName   string    `gorm:"not null" json:"student_name"`
	Score         string    `json:"score"`
	SubmissionURL string    `json:"submission_url"`
	ReportURL     string    `json:"report_url"`
	CreatedAt     time.Time `json:"created_at"`

	// Paper only carries the foreign key; it is never loaded.
	Paper *SolutionRecord `gorm:"foreignKey:PaperID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (EvaluationRecord) TableName() string { return "student_results" }

func (r *EvaluationRecord) BeforeCreate(*gorm.DB) error {
	r.EnsureID()
	return nil
}

func (r *EvaluationRecord) EnsureID() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

type PaperType string

const (
	PaperTypeComplete    PaperType = "complete"
	PaperTypeChapterwise PaperType = "chapterwise"
)

// GeneratedPaper 生成的试卷
type GeneratedPaper struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	ClassLevel string    `json:"class_level"`
	Subject    string    `json:"subject"`
	Board      string    `json:"board"`
	PaperType  PaperType `json:"paper_type"`
	Chapters   []string  `gorm:"serializer:json" json:"chapters"`
	Difficulty int       `json:"difficulty"`
	PaperURL   string    `json:"paper_url"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (GeneratedPaper) TableName() string { return "generated_papers" }

func (p *GeneratedPaper) BeforeCreate(*gorm.DB) error {
	p.EnsureID()
	return nil
}

func (p *GeneratedPaper) EnsureID() {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}
