package job

import (
	"time"

	"github.com/shopspring/decimal"

	"jobboard/internal/domain"
)

type Type string

const (
	TypeFullTime   Type = "FULL_TIME"
	TypePartTime   Type = "PART_TIME"
	TypeContract   Type = "CONTRACT"
	TypeInternship Type = "INTERNSHIP"
)

type Category string

const (
	CategoryEngineering Category = "ENGINEERING"
	CategoryDesign      Category = "DESIGN"
	CategoryProduct     Category = "PRODUCT"
	CategoryMarketing   Category = "MARKETING"
	CategorySales       Category = "SALES"
	CategoryFinance     Category = "FINANCE"
	CategoryHealthcare  Category = "HEALTHCARE"
	CategoryEducation   Category = "EDUCATION"
	CategoryOther       Category = "OTHER"
)

type ExperienceLevel string

const (
	ExperienceEntry  ExperienceLevel = "ENTRY"
	ExperienceMid    ExperienceLevel = "MID"
	ExperienceSenior ExperienceLevel = "SENIOR"
	ExperienceLead   ExperienceLevel = "LEAD"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeFullTime, TypePartTime, TypeContract, TypeInternship:
		return Type(s), nil
	}
	return "", domain.NewValidationError("unknown job type: " + s)
}

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryEngineering, CategoryDesign, CategoryProduct, CategoryMarketing,
		CategorySales, CategoryFinance, CategoryHealthcare, CategoryEducation, CategoryOther:
		return Category(s), nil
	}
	return "", domain.NewValidationError("unknown job category: " + s)
}

func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	switch ExperienceLevel(s) {
	case ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceLead:
		return ExperienceLevel(s), nil
	}
	return "", domain.NewValidationError("unknown experience level: " + s)
}

// Job is a posted position. The PostedBy* fields are a snapshot of the
// poster's identity frozen at creation time. Jobs are never hard-deleted:
// delete is the irreversible IsActive true -> false transition.
type Job struct {
	ID                  string
	Title               string
	Description         string
	CompanyName         string
	Location            string
	JobType             Type
	Category            Category
	ExperienceLevel     ExperienceLevel
	SalaryMin           decimal.NullDecimal
	SalaryMax           decimal.NullDecimal
	SkillsRequired      string
	PostedByUserID      string
	PostedByUsername    string
	PostedByEmail       string
	IsActive            bool
	ApplicationDeadline *time.Time
	CreatedAt           *time.Time
	UpdatedAt           *time.Time
	ApplicationCount    int64
}

// Input carries the employer-supplied fields of a create or update request,
// already parsed and enum-validated by the HTTP layer.
type Input struct {
	Title               string
	Description         string
	CompanyName         string
	Location            string
	JobType             Type
	Category            Category
	ExperienceLevel     ExperienceLevel
	SalaryMin           decimal.NullDecimal
	SalaryMax           decimal.NullDecimal
	SkillsRequired      string
	ApplicationDeadline *time.Time
}

type SortDir string

const (
	SortAsc  SortDir = "ASC"
	SortDesc SortDir = "DESC"
)

// PageRequest is a zero-based page selector with a whitelisted sort key.
type PageRequest struct {
	Page    int
	Size    int
	SortBy  string
	SortDir SortDir
}

func (p PageRequest) Validate() error {
	if p.Page < 0 {
		return domain.NewValidationError("page must be >= 0")
	}
	if p.Size <= 0 {
		return domain.NewValidationError("size must be > 0")
	}
	return nil
}

func (p PageRequest) Offset() int { return p.Page * p.Size }

type Page struct {
	Items         []Job
	Page          int
	Size          int
	TotalElements int64
}

func (p Page) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}
