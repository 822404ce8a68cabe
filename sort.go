package biblatex

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Sort orders f's entries in place by a comma-separated field list, e.g.
// "type,-year"; a '-' prefix sorts that field descending. "type" compares
// the entry type. Values compare numerically when both sides are integral
// after normalization, case-insensitively otherwise; entries missing a
// field sort last regardless of direction.
func Sort(f *File, spec string) error {
	if f == nil || f.EntryCount() == 0 {
		return fmt.Errorf("nothing to sort")
	}
	type sortKey struct {
		name string
		desc bool
	}
	var keys []sortKey
	for _, fld := range strings.Split(spec, ",") {
		fld = strings.TrimSpace(fld)
		desc := strings.HasPrefix(fld, "-")
		fld = strings.TrimPrefix(fld, "-")
		if fld == "" {
			return fmt.Errorf("invalid sort spec %q", spec)
		}
		keys = append(keys, sortKey{fld, desc})
	}

	sort.SliceStable(f.Entries, func(i, j int) bool {
		for _, k := range keys {
			av := normalizeAlnum(sortField(f.Entries[i], k.name))
			bv := normalizeAlnum(sortField(f.Entries[j], k.name))
			if av == bv {
				continue
			}
			if av == "" {
				return false
			}
			if bv == "" {
				return true
			}
			c := compareValues(av, bv)
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return nil
}

func sortField(e *Entry, name string) string {
	if name == "type" {
		return e.Type
	}
	return e.Field(name)
}

func compareValues(av, bv string) int {
	if an, err := strconv.Atoi(av); err == nil {
		if bn, err := strconv.Atoi(bv); err == nil {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(av, bv)
}
