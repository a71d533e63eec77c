package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON-column list types. The stat sequences and task totes are stored as
// json columns (same storage shape the mongo predecessor used) so the
// aggregate rows stay single-table.

type IntList []int

func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		l = IntList{}
	}
	return json.Marshal(l)
}

func (l *IntList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

type FloatList []float64

func (l FloatList) Value() (driver.Value, error) {
	if l == nil {
		l = FloatList{}
	}
	return json.Marshal(l)
}

func (l *FloatList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// ShipViaStat is one per-batch ship-via tally embedded in a Stat row.
type ShipViaStat struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Priority string `json:"priority"`
}

type ShipViaStatList []ShipViaStat

func (l ShipViaStatList) Value() (driver.Value, error) {
	if l == nil {
		l = ShipViaStatList{}
	}
	return json.Marshal(l)
}

func (l *ShipViaStatList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported json column source type")
	}
}
