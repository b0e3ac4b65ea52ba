// Package mapper converts tasks and domains between the wire representation
// (syncapi) and the storage representation (server/models).
//
// The conversion is total except for two deliberate losses:
//
//   - priority: high and urgent share the storage bucket "haute", so urgent
//     comes back as high; non_definie comes back as low.
//   - tags: not stored. ToStorageTask drops them and ToClientTask always
//     yields an empty list.
//
// All functions are pure.
package mapper
