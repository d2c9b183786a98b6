package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	"lab-request-api/models"
)

// normalizeCompanyShort reduces a company short name to at most five ASCII
// alphanumerics, uppercased. Falls back to "LAB".
func normalizeCompanyShort(short string) string {
	var b strings.Builder
	for _, r := range short {
		if r > unicode.MaxASCII {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() >= 5 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "LAB"
	}
	return b.String()
}

// NextRequestNumber generates the next unique request number for the company,
// formatted {SHORT}-{YYYYMMDD}-{NNN} with a per-day sequence.
func NextRequestNumber(db *gorm.DB, companyShort string) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", normalizeCompanyShort(companyShort), time.Now().Format("20060102"))

	var last models.LabRequest
	next := 1
	err := db.Select("request_number").
		Where("request_number LIKE ?", prefix+"%").
		Order("request_number DESC").
		First(&last).Error
	switch {
	case err == nil:
		parts := strings.Split(last.RequestNumber, "-")
		if n, convErr := strconv.Atoi(parts[len(parts)-1]); convErr == nil {
			next = n + 1
		}
	case err == gorm.ErrRecordNotFound:
		// first request of the day
	default:
		return "", err
	}

	return fmt.Sprintf("%s%03d", prefix, next), nil
}
