// Package models defines server-side data models persisted in the database.
// Field names and enumerations follow the storage schema, which differs from
// the wire representation in internal/syncapi; internal/mapper converts
// between the two.
package models
