package model

import (
	"fmt"
	"strings"
)

// StorageMode governs the path letter and the replace/version semantics of a document type.
// The zero value is not a valid mode.
type StorageMode uint8

const (
	StorageModeWriteOnceReadMany StorageMode = iota + 1
	StorageModeEditable
	StorageModeTemporary
	StorageModeVersioned
	StorageModeReplaceable
)

var storageModeNames = map[StorageMode]string{
	StorageModeWriteOnceReadMany: "WriteOnceReadMany",
	StorageModeEditable:          "Editable",
	StorageModeTemporary:         "Temporary",
	StorageModeVersioned:         "Versioned",
	StorageModeReplaceable:       "Replaceable",
}

// StorageModes lists every defined storage mode.
func StorageModes() []StorageMode {
	return []StorageMode{
		StorageModeWriteOnceReadMany,
		StorageModeEditable,
		StorageModeTemporary,
		StorageModeVersioned,
		StorageModeReplaceable,
	}
}

func (m StorageMode) String() string {
	if s, ok := storageModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("StorageMode(%d)", uint8(m))
}

// ParseStorageMode parses a mode name case-insensitively.
func ParseStorageMode(s string) (StorageMode, error) {
	for m, name := range storageModeNames {
		if strings.EqualFold(name, s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown storage mode %q", s)
}

// DocumentLifetime is how long a document may stay inactive before it is considered expired.
type DocumentLifetime uint8

const (
	LifetimeNever DocumentLifetime = iota
	LifetimeParentDetermined
	LifetimeHoursOne
	LifetimeHoursFour
	LifetimeHoursTwelve
	LifetimeDayOne
	LifetimeWeekOne
	LifetimeMonthOne
	LifetimeMonthsThree
	LifetimeMonthsSix
	LifetimeYearOne
	LifetimeYearsTwo
	LifetimeYearsThree
	LifetimeYearsFour
	LifetimeYearsSeven
	LifetimeYearsTen
)

var lifetimeNames = map[DocumentLifetime]string{
	LifetimeNever:            "Never",
	LifetimeParentDetermined: "ParentDetermined",
	LifetimeHoursOne:         "HoursOne",
	LifetimeHoursFour:        "HoursFour",
	LifetimeHoursTwelve:      "HoursTwelve",
	LifetimeDayOne:           "DayOne",
	LifetimeWeekOne:          "WeekOne",
	LifetimeMonthOne:         "MonthOne",
	LifetimeMonthsThree:      "MonthsThree",
	LifetimeMonthsSix:        "MonthsSix",
	LifetimeYearOne:          "YearOne",
	LifetimeYearsTwo:         "YearsTwo",
	LifetimeYearsThree:       "YearsThree",
	LifetimeYearsFour:        "YearsFour",
	LifetimeYearsSeven:       "YearsSeven",
	LifetimeYearsTen:         "YearsTen",
}

func (l DocumentLifetime) String() string {
	if s, ok := lifetimeNames[l]; ok {
		return s
	}
	return fmt.Sprintf("DocumentLifetime(%d)", uint8(l))
}

// Valid reports whether l is a defined lifetime.
func (l DocumentLifetime) Valid() bool {
	_, ok := lifetimeNames[l]
	return ok
}

// ParseDocumentLifetime parses a lifetime name case-insensitively.
func ParseDocumentLifetime(s string) (DocumentLifetime, error) {
	for l, name := range lifetimeNames {
		if strings.EqualFold(name, s) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown document lifetime %q", s)
}

// DocumentStatus is the lifecycle status of a stored document.
type DocumentStatus uint8

const (
	DocumentStatusActive DocumentStatus = iota + 1
	DocumentStatusExpired
	DocumentStatusArchived
)

func (s DocumentStatus) String() string {
	switch s {
	case DocumentStatusActive:
		return "Active"
	case DocumentStatusExpired:
		return "Expired"
	case DocumentStatusArchived:
		return "Archived"
	}
	return fmt.Sprintf("DocumentStatus(%d)", uint8(s))
}

// StorageNodeLocation describes where a storage node lives. It also selects the storage adapter.
type StorageNodeLocation uint8

const (
	LocationHostedSMB StorageNodeLocation = iota + 1
	LocationHostedLocal
	LocationObjectStore
)

var locationNames = map[StorageNodeLocation]string{
	LocationHostedSMB:   "HostedSMB",
	LocationHostedLocal: "HostedLocal",
	LocationObjectStore: "ObjectStore",
}

func (l StorageNodeLocation) String() string {
	if s, ok := locationNames[l]; ok {
		return s
	}
	return fmt.Sprintf("StorageNodeLocation(%d)", uint8(l))
}

// ParseStorageNodeLocation parses a location name case-insensitively.
func ParseStorageNodeLocation(s string) (StorageNodeLocation, error) {
	for l, name := range locationNames {
		if strings.EqualFold(name, s) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown storage node location %q", s)
}

// StorageNodeSpeed is the speed tier of a storage node.
type StorageNodeSpeed uint8

const (
	SpeedHot StorageNodeSpeed = iota + 1
	SpeedWarm
	SpeedCold
)

var speedNames = map[StorageNodeSpeed]string{
	SpeedHot:  "Hot",
	SpeedWarm: "Warm",
	SpeedCold: "Cold",
}

func (s StorageNodeSpeed) String() string {
	if n, ok := speedNames[s]; ok {
		return n
	}
	return fmt.Sprintf("StorageNodeSpeed(%d)", uint8(s))
}

// ParseStorageNodeSpeed parses a speed name case-insensitively.
func ParseStorageNodeSpeed(s string) (StorageNodeSpeed, error) {
	for sp, name := range speedNames {
		if strings.EqualFold(name, s) {
			return sp, nil
		}
	}
	return 0, fmt.Errorf("unknown storage node speed %q", s)
}

// NodeRole is the role a storage node plays for a document type.
type NodeRole uint8

const (
	NodeRoleActive NodeRole = iota + 1
	NodeRoleArchival
)

func (r NodeRole) String() string {
	switch r {
	case NodeRoleActive:
		return "Active"
	case NodeRoleArchival:
		return "Archival"
	}
	return fmt.Sprintf("NodeRole(%d)", uint8(r))
}
