package domain

import "time"

type RateType string

const (
	RateTypeFixed      RateType = "Fixed"
	RateTypePercentage RateType = "Percentage"
)

type Quality string

const (
	QualityNormal  Quality = "Normal"
	QualityMedium  Quality = "Medium"
	QualityRegular Quality = "Regular"
	QualityVIP     Quality = "VIP"
)

func (q Quality) Valid() bool {
	switch q {
	case QualityNormal, QualityMedium, QualityRegular, QualityVIP:
		return true
	default:
		return false
	}
}

// StitchingRate is one payout rate entry. Type is a free-text label that is
// substring-matched against the order's task type and the worker's role
// keyword.
type StitchingRate struct {
	ID       int64    `gorm:"primaryKey" json:"id"`
	Type     string   `gorm:"type:text;not null" json:"type"`
	Normal   float64  `gorm:"not null" json:"normal"`
	Medium   float64  `gorm:"not null" json:"medium"`
	Regular  float64  `gorm:"not null" json:"regular"`
	VIP      float64  `gorm:"column:vip;not null" json:"vip"`
	RateType RateType `gorm:"type:text;not null" json:"rateType"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

func (StitchingRate) TableName() string { return "stitching_rates" }

// Amount selects the raw rate for a quality grade. Unknown grades fall back
// to Regular, matching how orders default.
func (r StitchingRate) Amount(q Quality) float64 {
	switch q {
	case QualityNormal:
		return r.Normal
	case QualityMedium:
		return r.Medium
	case QualityVIP:
		return r.VIP
	default:
		return r.Regular
	}
}
