// Package timezones provides the IANA timezone list as a choices source, for
// settings such as the site timezone.
//
// The backing data is loaded from the embedded list under
// data/iana_timezones.txt. The source can also append fixed UTC offsets for
// sites that do not follow a named zone.
package timezones
