/*
Package domain contains the core models of the aoflow compiler.

It defines the program graph (Nodes and Edges grouped in a Snapshot), the marker-delimited
Fragment format emitted for every node, the error taxonomy of the code generator and the
lifecycle hooks used for observability. The package has no I/O and no third-party dependencies.

# Key Entities

  - Node: a vertex of the program graph (handler, conditional, loop, code block...).
  - Edge: a directed, typed connection between two nodes.
  - Snapshot: the immutable {nodes, edges} view a generation call works on.
  - Fragment: generated Lua for one node, wrapped in start/end markers carrying its id.
*/
package domain
