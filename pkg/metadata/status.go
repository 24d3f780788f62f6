package metadata

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusAvailable  Status = "AVAILABLE"
	StatusInCustody  Status = "IN_CUSTODY"
	StatusCheckedOut Status = "CHECKED_OUT"
)

// StatusAll is the list filter sentinel meaning "any status".
const StatusAll = "ALL"

func NewStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusInCustody, StatusCheckedOut:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}
