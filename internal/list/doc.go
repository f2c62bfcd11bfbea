/*
Package list implements an intrusive doubly-linked list as an arena of
handles rather than pointers.

The original kernel embeds next/prev pointers directly in each node
(flexpages, waiters) and gets O(1) push-back, pop-front, and remove-self for
free. Go has no portable way to embed a raw pointer inside an arbitrary
struct and splice it out of one list into another the way C does, so this
package models the same intrusive discipline with a small index-based
arena: nodes live in a slice, and links are [Handle] values (slice indices)
instead of pointers. The zero Handle is reserved as "no node", matching the
convention that a NULL next-pointer ends a C list.

This keeps the complexity bound intrusive lists are chosen for (O(1)
push-back/pop-front, and O(1) remove given a handle) while staying memory-safe and avoiding
a garbage collector fighting self-referential pointer structs.
*/
package list
