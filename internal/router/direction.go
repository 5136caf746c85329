/*
	TIA - Cardinal direction constants

	Copyright (c) 2026, The TIA Authors

	Permission is hereby granted, free of charge, to any person obtaining a
	copy of this software and associated documentation files (the "Software"),
	to deal in the Software without restriction, including without limitation
	the rights to use, copy, modify, merge, publish, distribute, sublicense,
	and/or sell copies of the Software, and to permit persons to whom the
	Software is furnished to do so, subject to the following conditions:

	The above copyright notice and this permission notice shall be included in
	all copies or substantial portions of the Software.

	THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
	IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
	FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
	THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
	IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
	CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

package router

// Direction is a cardinal direction used by routers and software-routed
// programs. Values double as indices into per-direction buffer slices.
type Direction int

const (
	North Direction = iota
	East
	South
	West

	NumDirections
)

// Directions enumerates every cardinal direction in index order.
var Directions = [NumDirections]Direction{North, East, South, West}

// Reverse maps a direction to its opposite.
var Reverse = map[Direction]Direction{
	North: South,
	East:  West,
	South: North,
	West:  East,
}

var directionNames = map[Direction]string{
	North: "north",
	East:  "east",
	South: "south",
	West:  "west",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return "?"
}
