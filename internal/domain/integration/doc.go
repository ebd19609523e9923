// Package integration contains the Integration bounded context.
// This context manages the external fulfillment engine that performs supplier
// catalog synchronization, order fulfillment and price/stock monitoring.
//
// Key concepts:
//   - Operation: closed set of operations the engine exposes, each bound to a
//     fixed upstream route and a fixed caller-facing failure message
//   - FulfillmentEngine: port for forwarding one operation to the engine
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
