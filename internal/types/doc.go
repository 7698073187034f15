/*
Package types defines the declarative application tree shared by every
other package.

# Tree

An App holds either Groups of Sections or ungrouped Sections. A Section
may read data (ReadRule), display it (Display), declare inputs (Fields)
and expose Actions. Row fields and row actions repeat once per list row.
Live sections hold persistent channels instead of a read rule.

Trees are built in Go with the functional options of builder.go or loaded
from YAML/JSON. Field declarations accept a bare default value or a rich
options object; both normalize to Field:

	fields:
	  amount: 10
	  note: { type: textarea, rows: 3 }

# Envelope

Every request attempt, successful or not, is normalized to an Envelope.
Transport failures carry Status 0 and the transport error as the message.

# Validation

Validate reports configuration errors before mount. Errors raised later at
the point of use are *ConfigError as well.
*/
package types
