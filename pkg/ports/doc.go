/*
Package ports defines the driven ports (interfaces) of the aoflow compiler.

These interfaces decouple code generation from the places graphs come from,
the AO runtime that executes generated code and the services that create
remote processes.

# Key Interfaces

  - GraphLoader: Loads the current graph snapshot (e.g., from Loam, a file or memory).
  - GraphStore: Persists named snapshots (memory, file, Redis).
  - Provisioner: Creates remote processes (e.g., token processes) referenced by nodes.
  - Executor: Runs generated Lua against an AO process.
  - EditorConverter: Turns visual-editor markup into Lua.
  - DistributedLocker: Serializes provisioning of one node across replicas.
*/
package ports
