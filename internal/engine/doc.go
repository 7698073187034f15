/*
Package engine keeps sections in sync with the store and the server.

Each Section owns its bound forms and a published view snapshot. Refresh
runs one pass: store-derived options, the read request (with mock
fallback), store mapping, then the list, meta line and payload views.
The display rule is picked once from a small decision table and kept for
the life of the section.

A failed read falls back to, in order, the section's mock generator, its
static mock value and a payload inferred from the display. When none
applies Refresh returns a *RefreshError and the previous view stays.

Live sections hold websocket channels instead of a read rule. Their
callbacks run on receive goroutines and republish the snapshot.

Registry maps section ids to refresh functions so any component can ask
for "refresh section X" by id.
*/
package engine
