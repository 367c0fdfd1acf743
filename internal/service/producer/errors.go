package producer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrMissingFields = errors.New("missing required fields")

func required(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
}
