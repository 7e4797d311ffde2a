/*
The package sms implements the transfer layer of the short message service as seen by a Short Message Service
Center: decoding and encoding of TPDUs, the GSM 7-bit default alphabet, addresses, timestamps, user data headers
and the reassembly of concatenated messages. This implementation is based on:

	[TL]  3GPP TS 23.040 V17.2.0 (2022-03)
	[ALP] 3GPP TS 23.038 V17.0.0 (2022-04)

The most relevant chapters in [TL] are 9.2.2 (PDU type repertoire) and 9.2.3 (definition of the TPDU parameters).

Abbreviations:
PDU: Protocol Data Unit
TPDU: Transfer Protocol Data Unit
DCS: Data Coding Scheme
UDH: User Data Header
SCTS: Service Centre Time Stamp

Restrictions:
National language shift tables and compressed user data are not supported.
The enhanced validity period format is not supported.
*/
package sms
