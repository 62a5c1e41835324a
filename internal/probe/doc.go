// Package probe derives facts about files on disk: content digests, sizes,
// modification times, image dimensions, media durations, and MIME types.
// Every probe treats a missing path as "absent", not an error, so callers
// can record whatever is knowable and move on.
package probe
