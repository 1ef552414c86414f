package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/asterix-health/opsboard/internal/dashboard"
	"github.com/asterix-health/opsboard/internal/opsdata"
)

func bytesReader(raw []byte) io.Reader {
	return bytes.NewReader(raw)
}

func loadData(path string) (*opsdata.Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return opsdata.Parse(raw)
}

type selectionFlags struct {
	week        string
	sort        string
	provider    string
	serviceLine string
}

func (f selectionFlags) resolve(data *opsdata.Data) (dashboard.Selection, error) {
	sel := dashboard.DefaultSelection(data)
	if f.week != "" {
		if _, ok := dashboard.ParseWeek(f.week); !ok {
			return dashboard.Selection{}, fmt.Errorf("invalid week %q, expected YYYY-MM-DD", f.week)
		}
		sel.Week = f.week
	}
	if f.sort != "" && dashboard.ParseSortKey(f.sort) != dashboard.SortKey(f.sort) {
		return dashboard.Selection{}, fmt.Errorf("invalid sort %q", f.sort)
	}
	sel.Sort = dashboard.ParseSortKey(f.sort)
	sel.Provider = f.provider
	sel.ServiceLine = f.serviceLine
	return sel, nil
}
