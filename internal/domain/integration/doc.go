// Package integration contains the Integration bounded context.
// This context lets the back office talk to an open-ended set of external
// shop and channel platforms through one uniform dispatch contract.
//
// Key concepts:
//   - Platform: reusable integration definition mapping each Capability to a CapabilityTarget
//   - Shop / Channel: a credentialed instance of a Platform owned by a user
//   - CapabilityTarget: Remote{URL} or Local{Module}, decided when configuration is loaded
//   - Order / CartItem: local order records kept in sync with platform webhooks and purchases
//
// Design Pattern: Ports & Adapters
//   - Ports (repositories, EventPublisher, PayloadArchive) are defined here in the domain layer
//   - Adapters (dispatch registry, platform modules, persistence) are in the infrastructure layer
package integration
