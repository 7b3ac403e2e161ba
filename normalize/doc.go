// Package normalize converts raw feed field values into the representation a
// given output format expects.
//
// Normalizers form a closed set selected by Kind. Each one is a total
// function over the generic value grammar: a structured value, a bare scalar,
// or (for datetimes) a time value. Only the datetime normalizers can fail;
// the rest degrade to nil (field omitted) or pass the value through.
package normalize
