// Package domain defines the entities kept by the flow registry: buckets, the
// versioned items stored in them (flows and extension bundles), flow snapshots,
// bundle versions with their dependencies, and the extensions a bundle version
// provides.
//
// Entities are plain value objects. They carry no persistence logic; mapping to
// and from table rows lives in the sqlstore package.
package domain
