// Package message implements the line-delimited JSON envelope exchanged
// between nodes and the host.
//
// Every line is one object:
//
//	{"src": "n1", "dest": "c1", "body": {"msg_id": 1, "in_reply_to": 3, "type": "read_ok", ...}}
//
// The payload fields are flattened into the body next to the header keys.
// Each workload declares its closed set of payload types in a Registry;
// decoding a type outside that set is an error, except an unregistered
// "*_ok" type, which decodes as Ack.
package message
