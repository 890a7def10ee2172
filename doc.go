/*
Package pointmap implements a sparse two-dimensional map keyed by integer
coordinates, whose cells can be individually paged out to disk and back.

We implement:

1. Points, ordered by X and then by Y.

2. Map, an ordered in-memory collection of cells, with Save, Unload, Load
and SaveAll moving individual cells between memory and storage.

3. Storages: a directory-per-column layout on the file system (the default),
a single Bolt file, and a transient in-memory storage for tests.

The map only provides the mechanism. Deciding which cells to unload and when
(LRU, distance from the player, on shutdown) is up to the caller.

# Technical Details

**Cell states.**
A cell is resident (present in the map), persisted (present in storage) or
absent. Load and Unload are the only operations crossing the boundary, and
each leaves the cell in exactly one state. Save writes a resident cell
without evicting it.

**Columns.**
All cells sharing an X coordinate form a column. On the file system a column
is a directory named after the decimal X, holding one file per Y:

	<root>/<x>/<y>.cell

A column that does not exist yet is created as a side effect of a failing
Save, Unload or Load, which reports ErrNotFound (and ErrColumnCreated). The
next attempt succeeds. SaveAll retries such cells once on its own.

Listing columns in X order and files in Y order reproduces the iteration
order of the map; see Map.Persisted.

## Binary encoding

**Cell file**: header, then payload, then checksum.

**Header**:
1. Magic "PMC1" (4 bytes).
2. Flags (uvarint). No flags are defined yet; unknown flags are rejected.
3. Payload size (uvarint).

**Payload**: the value encoded by the map's Codec (msgpack by default).

**Checksum**: xxhash64 of the header and payload, 8 bytes big-endian.

Cell files are written to a temporary file and renamed into place, so a
crash never leaves a partially written cell behind. A truncated or damaged
file fails the checksum and is reported as ErrCorrupt.

**Bolt keys**: in the Bolt storage, every column is a nested bucket of the
“cells” bucket. Column and cell keys are 8-byte big-endian integers with the
sign bit flipped, so byte order matches numeric order.
*/
package pointmap
