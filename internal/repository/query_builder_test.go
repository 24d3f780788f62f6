package repository

import (
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
)

func TestBuildConditionsAppliesAliases(t *testing.T) {
	qb := NewQueryBuilder()
	qb.AddCondition("status", "AVAILABLE")
	qb.AddCondition("a.category_id", "cat-1")

	conditions := qb.BuildConditions(map[string]string{"status": "a.status"})

	assert.Equal(t, goqu.Ex{"a.status": "AVAILABLE", "a.category_id": "cat-1"}, conditions)
}
