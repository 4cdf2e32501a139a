package mcpserver

// ProtocolGuide explains the box model to LLM consumers of the tools.
const ProtocolGuide = `# City of Boxes Knowledge Graph

The project is mapped into **boxes**: one box per source, header, script or
documentation file.

## Box fields

- ` + "`id`" + `: base file name in PascalCase plus "Box" (` + "`script.cpp`" + ` -> ` + "`ScriptBox`" + `).
  Files that share a base name share an id; the last one scanned wins.
- ` + "`category`" + `: first matching path rule (script-engine, core-consensus, network,
  api, wallet, cryptography, storage, utilities, testing, documentation,
  build-system, infrastructure, other).
- ` + "`interface`" + `: function, class and opcode names found by heuristic extraction.
- ` + "`dependencies`" + `: names from ` + "`#include`" + ` lines, exactly as written.
- ` + "`contract`" + `: inputs are get*/set* functions, outputs are all functions.

## Searching

- ` + "`search_keyword`" + ` ranks boxes by literal, case-insensitive occurrence count.
- ` + "`semantic_search`" + ` is the same keyword search. Stored embeddings are hash
  placeholders and carry no meaning.

## Repairing

Call ` + "`get_error_template`" + ` for the box that failed, or ` + "`repair_prompt`" + ` with the
error reason and a suggested fix to get a filled-in repair prompt.
`
