// Package address models delivery addresses and their normalized identity.
//
// An Address is identified by (street, number, district, city, state) compared
// case-insensitively after trimming. Once an address carries coordinates it is the
// durable form of the geocode cache and is reused by every order shipped to it.
package address
