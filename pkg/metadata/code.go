package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Code is the human readable identity printed on QR labels, e.g. SHF-DR12 for
// the twelfth asset in a category with prefix DR, or SHF-KIT3 for a kit.
type Code struct {
	init     string
	category string
	id       string
}

const (
	Init      string = "SHF"
	KitPrefix string = "KIT"
)

var codePattern = regexp.MustCompile(`^` + Init + `-([A-Z]{1,3})?([0-9]+)$`)

func (c *Code) String() string {
	return c.init + "-" + c.category + c.id
}

func (c *Code) Prefix() string {
	return c.category
}

func (c *Code) Sequence() int {
	n, _ := strconv.Atoi(c.id)
	return n
}

func (c *Code) IsKit() bool {
	return c.category == KitPrefix
}

func NewCode(prefix string, sequence int) Code {
	var code Code

	code.init = Init
	code.category = strings.ToUpper(prefix)
	code.id = strconv.Itoa(sequence)

	return code
}

func NewKitCode(sequence int) Code {
	return NewCode(KitPrefix, sequence)
}

func ParseCode(value string) (Code, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	match := codePattern.FindStringSubmatch(normalized)
	if match == nil {
		return Code{}, fmt.Errorf("value %q is not a valid code", value)
	}

	// labels may carry zero padding; stored codes never do
	sequence, err := strconv.Atoi(match[2])
	if err != nil || sequence == 0 {
		return Code{}, fmt.Errorf("value %q is not a valid code", value)
	}

	return NewCode(match[1], sequence), nil
}

var prefixPattern = regexp.MustCompile(`^[A-Z]{0,3}$`)

// IsValidPrefix reports whether prefix can appear in a code: up to three
// upper case letters, and never the kit prefix.
func IsValidPrefix(prefix string) bool {
	return prefixPattern.MatchString(prefix) && prefix != KitPrefix
}
