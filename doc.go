/*
Package aoflow compiles visual node graphs into Lua programs for AO processes.

A graph is a set of typed nodes (handlers, conditionals, loops, message
sends, raw code blocks, token processes) joined by typed edges. Each node
type declares its inputs and a generator; the compiler resolves which nodes
nest inside a block and which follow it, normalizes user values into Lua
tokens, formats the result and wraps every node's code in markers:

	-- [start:<node id>]
	...
	-- [end:<node id>]

# Concept

The graph is loaded on every call from a ports.GraphLoader, so edits on
disk (or in a store) are picked up without restarting. Code generation is a
pure function of the snapshot and the node-type registry, except for token
nodes whose remote process is provisioned once and remembered.

# Usage

	compiler, err := aoflow.New("./graph.json")
	if err != nil {
		log.Fatal(err)
	}

	// The fragment of one node, with everything attached to it.
	code, err := compiler.GenerateCode(ctx, "handler-1", nil)

	// The whole program, from the start node to the first "add" node.
	prog, err := compiler.AssembleProgram(ctx)
	fmt.Println(prog.Source)

A directory is read as a Loam repository with one document per node; any
other path as a JSON or YAML snapshot. Graphs can also come from a
ports.GraphStore (memory, file or Redis) through WithStore, or be built in
Go with the dsl package.

# Execution

With an executor (see pkg/adapters/process), RunNode evaluates one node's
fragment on a target process and RunFlow evaluates every main-chain node in
order, reporting each outcome without stopping on failures.
*/
package aoflow
