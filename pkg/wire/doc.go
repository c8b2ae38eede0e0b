// Package wire implements the DPM86xx ASCII line protocol codec.
//
// Requests and replies are single 7-bit ASCII lines terminated by CRLF:
//
//	request:   :AAdMM=OP[,OP2],\r\n
//	reply:     :AAdMM=VALUE,\r\n
//	write ack: :01ok\r\n
//
// AA is the two-digit zero-padded bus address, d the direction character
// ('r' or 'w'), MM the two-digit zero-padded function member selecting a
// device register, and OP/VALUE unpadded decimal integers. Reads carry the
// placeholder operand 0; the combined voltage+current write carries two
// operands. The write acknowledgment always echoes address 01, whatever
// address was targeted.
//
// # Building requests
//
// A Request validates before encoding, in the fixed order address,
// function member, operand, operand2, direction:
//
//	frame, err := wire.Request{
//	    Address:   1,
//	    Direction: wire.Write,
//	    Function:  wire.FuncVoltageSetting,
//	    Operand:   1234,
//	}.Encode()
//
// Typed builders wrap Request with the register registry and the unit
// handling; each write quantity has a wire-unit form and a physical-unit
// form:
//
//	frame, err := wire.BuildWriteVoltage(1, 1234)       // centivolts
//	frame, err := wire.BuildWriteVoltageVolts(1, 12.34) // volts
//
// # Parsing replies
//
// ParseNumericResponse extracts the decimal payload of a read reply.
// IsAck matches the fixed write acknowledgment byte-for-byte; anything
// else is "not acknowledged", never an error. ParseRequest decodes a
// request line again, for responder implementations.
//
// The codec performs no I/O, holds no state, and is safe for concurrent
// use.
package wire
