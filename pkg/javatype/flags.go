package javatype

import (
	"fmt"
	"strings"
)

// Flag is a modifier bitmap. Bit positions follow the JVM access flags.
type Flag int64

const (
	Public       Flag = 1 << 0
	Private      Flag = 1 << 1
	Protected    Flag = 1 << 2
	Static       Flag = 1 << 3
	Final        Flag = 1 << 4
	Synchronized Flag = 1 << 5
	Volatile     Flag = 1 << 6
	Transient    Flag = 1 << 7
	Native       Flag = 1 << 8
	Abstract     Flag = 1 << 10
	Strictfp     Flag = 1 << 11
	Default      Flag = 1 << 43
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{Public, "public"},
	{Private, "private"},
	{Protected, "protected"},
	{Static, "static"},
	{Final, "final"},
	{Synchronized, "synchronized"},
	{Volatile, "volatile"},
	{Transient, "transient"},
	{Native, "native"},
	{Abstract, "abstract"},
	{Strictfp, "strictfp"},
	{Default, "default"},
}

// Has reports whether every flag in flags is set.
func (f Flag) Has(flags ...Flag) bool {
	for _, fl := range flags {
		if f&fl == 0 {
			return false
		}
	}
	return true
}

// Visible reports whether the modifier set is visible outside its package
// hierarchy, i.e. public or protected.
func (f Flag) Visible() bool {
	return f&(Public|Protected) != 0
}

// Names returns the modifier keywords in declaration order.
func (f Flag) Names() []string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

// ParseFlags converts modifier keywords into a bitmap.
func ParseFlags(names []string) (Flag, error) {
	var f Flag
	for _, n := range names {
		found := false
		for _, fn := range flagNames {
			if fn.name == strings.ToLower(n) {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown modifier %q", n)
		}
	}
	return f, nil
}

// ClassKind distinguishes the declaration forms of a class.
type ClassKind int

const (
	KindClass ClassKind = iota
	KindEnum
	KindInterface
	KindAnnotation
	KindRecord
)

var classKindNames = []string{"Class", "Enum", "Interface", "Annotation", "Record"}

func (k ClassKind) String() string {
	if int(k) >= 0 && int(k) < len(classKindNames) {
		return classKindNames[k]
	}
	return "Unknown"
}

// ParseClassKind is the inverse of ClassKind.String. The empty string is a class.
func ParseClassKind(s string) (ClassKind, error) {
	if s == "" {
		return KindClass, nil
	}
	for i, n := range classKindNames {
		if n == s {
			return ClassKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown class kind %q", s)
}

// Variance is the variance of a generic type variable or wildcard.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

var varianceNames = []string{"INVARIANT", "COVARIANT", "CONTRAVARIANT"}

func (v Variance) String() string {
	if int(v) >= 0 && int(v) < len(varianceNames) {
		return varianceNames[v]
	}
	return "UNKNOWN"
}

// ParseVariance is the inverse of Variance.String. The empty string is invariant.
func ParseVariance(s string) (Variance, error) {
	if s == "" {
		return Invariant, nil
	}
	for i, n := range varianceNames {
		if n == s {
			return Variance(i), nil
		}
	}
	return 0, fmt.Errorf("unknown variance %q", s)
}
