package nucleardata

import "isoplan/ports"

// Reference values are planning-grade: atomic masses in g/mol, abundances as
// fractions, half-lives in days and cross-sections in barns.

var builtinAtomicMasses = map[string]float64{
	"H": 1.008, "He": 4.0026, "Li": 6.94, "B": 10.81, "C": 12.011, "N": 14.007,
	"O": 15.999, "F": 18.998, "Na": 22.990, "Mg": 24.305, "Al": 26.982, "Si": 28.085,
	"P": 30.974, "S": 32.06, "Cl": 35.45, "K": 39.098, "Ca": 40.078, "Sc": 44.956,
	"Ti": 47.867, "V": 50.942, "Cr": 51.996, "Mn": 54.938, "Fe": 55.845, "Co": 58.933,
	"Ni": 58.693, "Cu": 63.546, "Zn": 65.38, "Ga": 69.723, "Ge": 72.630, "As": 74.922,
	"Se": 78.971, "Br": 79.904, "Kr": 83.798, "Rb": 85.468, "Sr": 87.62, "Y": 88.906,
	"Zr": 91.224, "Nb": 92.906, "Mo": 95.95, "Tc": 98.0, "Ru": 101.07, "Rh": 102.91,
	"Pd": 106.42, "Ag": 107.87, "Cd": 112.41, "In": 114.82, "Sn": 118.71, "Sb": 121.76,
	"Te": 127.60, "I": 126.90, "Xe": 131.29, "Cs": 132.91, "Ba": 137.33, "La": 138.91,
	"Ce": 140.12, "Pr": 140.91, "Nd": 144.24, "Sm": 150.36, "Eu": 151.96, "Gd": 157.25,
	"Tb": 158.93, "Dy": 162.50, "Ho": 164.93, "Er": 167.26, "Tm": 168.93, "Yb": 173.05,
	"Lu": 174.97, "Hf": 178.49, "Ta": 180.95, "W": 183.84, "Re": 186.21, "Os": 190.23,
	"Ir": 192.22, "Pt": 195.08, "Au": 196.97, "Hg": 200.59, "Tl": 204.38, "Pb": 207.2,
	"Bi": 208.98, "Ra": 226.0, "Ac": 227.0, "Th": 232.04, "U": 238.03, "Am": 243.0,
}

var builtinAbundances = map[string]float64{
	"Lu-175": 0.9741, "Lu-176": 0.0259,
	"Yb-168": 0.0013, "Yb-174": 0.3183, "Yb-176": 0.1276,
	"Zn-64": 0.4917, "Zn-66": 0.2773, "Zn-67": 0.0404, "Zn-68": 0.1845, "Zn-70": 0.0061,
	"Cu-63": 0.6915, "Cu-65": 0.3085,
	"Mo-92": 0.1465, "Mo-98": 0.2439, "Mo-100": 0.0982,
	"Co-59": 1.0, "Sc-45": 1.0, "Y-89": 1.0, "P-31": 1.0, "Na-23": 1.0,
	"Ho-165": 1.0, "Tm-169": 1.0, "Au-197": 1.0, "Cs-133": 1.0,
	"Ir-191": 0.373, "Ir-193": 0.627,
	"Re-185": 0.374, "Re-187": 0.626,
	"Sm-152": 0.2675, "Er-168": 0.2678, "W-186": 0.2843, "Te-130": 0.3408,
	"Sr-86": 0.0986, "Sr-88": 0.8258,
	"Ni-58": 0.6808, "Ni-62": 0.0363, "Ni-64": 0.0093,
	"Fe-54": 0.05845, "Fe-58": 0.00282,
	"Eu-151": 0.4781, "Eu-153": 0.5219,
	"Ti-47": 0.0744, "Ti-48": 0.7372,
	"Ag-107": 0.5184, "Ag-109": 0.4816,
	"Cl-35": 0.7576, "K-41": 0.0673, "Cr-50": 0.04345, "Ca-48": 0.00187,
	"Xe-124": 0.00095, "Gd-152": 0.0020, "Ga-69": 0.60108, "Ga-71": 0.39892,
}

var builtinHalfLives = map[string]ports.HalfLife{
	"H-3":     {Days: 4500},
	"C-14":    {Days: 2.093e6},
	"P-32":    {Days: 14.27},
	"Cl-36":   {Days: 1.099e8},
	"Sc-46":   {Days: 83.79},
	"Sc-47":   {Days: 3.349},
	"Fe-59":   {Days: 44.5},
	"Co-58":   {Days: 70.86},
	"Co-60":   {Days: 1925.28},
	"Ni-63":   {Days: 36525},
	"Cu-64":   {Days: 0.5292},
	"Cu-67":   {Days: 2.576},
	"Zn-65":   {Days: 243.9},
	"Ga-67":   {Days: 3.26},
	"Ga-68":   {Days: 0.04696},
	"Ge-68":   {Days: 270.95},
	"Sr-89":   {Days: 50.56},
	"Sr-90":   {Days: 10519},
	"Y-90":    {Days: 2.669},
	"Mo-99":   {Days: 2.7475},
	"Tc-99m":  {Days: 0.25025},
	"Tc-99":   {Days: 7.71e7},
	"Ag-110m": {Days: 249.8},
	"I-125":   {Days: 59.49},
	"I-131":   {Days: 8.0252},
	"Te-131":  {Days: 0.0174},
	"Cs-137":  {Days: 11019},
	"Sm-153":  {Days: 1.928},
	"Eu-152":  {Days: 4941},
	"Eu-154":  {Days: 3138},
	"Ho-166":  {Days: 1.117},
	"Ho-166m": {Days: 4.38e5},
	"Er-169":  {Days: 9.4},
	"Tm-170":  {Days: 128.6},
	"Yb-169":  {Days: 32.03},
	"Yb-175":  {Days: 4.185},
	"Yb-177":  {Days: 0.0792},
	"Lu-176":  {Days: 1.37e13},
	"Lu-177":  {Days: 6.647},
	"Lu-177m": {Days: 160.44},
	"W-188":   {Days: 69.78},
	"Re-186":  {Days: 3.718},
	"Re-188":  {Days: 0.7},
	"Ir-192":  {Days: 73.83},
	"Ra-225":  {Days: 14.9},
	"Ac-225":  {Days: 9.92},
	"Th-229":  {Days: 2.68e6},
	"Am-241":  {Days: 157860},

	"Lu-175": {Stable: true}, "Yb-176": {Stable: true}, "Yb-168": {Stable: true},
	"Cu-63": {Stable: true}, "Cu-65": {Stable: true},
	"Zn-64": {Stable: true}, "Zn-66": {Stable: true}, "Zn-67": {Stable: true}, "Zn-68": {Stable: true},
	"Co-59": {Stable: true}, "Ni-58": {Stable: true}, "Ni-64": {Stable: true},
	"Fe-56": {Stable: true}, "Fe-58": {Stable: true},
	"Mo-98": {Stable: true}, "Mo-100": {Stable: true},
	"Y-89": {Stable: true}, "Sc-45": {Stable: true}, "Ti-47": {Stable: true},
	"Ir-191": {Stable: true}, "Ir-193": {Stable: true}, "Ho-165": {Stable: true},
}

var builtinPathways = map[string]ports.Pathway{
	"Lu-176(n,gamma)Lu-177":  {CrossSectionBarns: 2090},
	"Lu-176(n,gamma)Lu-177m": {CrossSectionBarns: 2.8},
	"Yb-176(n,gamma)Yb-177":  {CrossSectionBarns: 2.85},
	"Yb-168(n,gamma)Yb-169":  {CrossSectionBarns: 2300},
	"Mo-98(n,gamma)Mo-99":    {CrossSectionBarns: 0.13},
	"Mo-100(n,2n)Mo-99":      {CrossSectionBarns: 1.4, ThresholdMeV: 8.3},
	"Co-59(n,gamma)Co-60":    {CrossSectionBarns: 37.2},
	"Ir-191(n,gamma)Ir-192":  {CrossSectionBarns: 954},
	"Ho-165(n,gamma)Ho-166":  {CrossSectionBarns: 61.2},
	"Ho-165(n,gamma)Ho-166m": {CrossSectionBarns: 3.1},
	"Sm-152(n,gamma)Sm-153":  {CrossSectionBarns: 206},
	"Re-185(n,gamma)Re-186":  {CrossSectionBarns: 112},
	"W-186(n,gamma)W-187":    {CrossSectionBarns: 38},
	"Cu-63(n,gamma)Cu-64":    {CrossSectionBarns: 4.5},
	"Zn-64(n,p)Cu-64":        {CrossSectionBarns: 0.031, ThresholdMeV: 1.0},
	"Zn-67(n,p)Cu-67":        {CrossSectionBarns: 0.0011, ThresholdMeV: 1.0},
	"Zn-64(n,gamma)Zn-65":    {CrossSectionBarns: 0.76},
	"Ti-47(n,p)Sc-47":        {CrossSectionBarns: 0.02, ThresholdMeV: 1.0},
	"Sc-45(n,gamma)Sc-46":    {CrossSectionBarns: 27.2},
	"Ni-58(n,p)Co-58":        {CrossSectionBarns: 0.11, ThresholdMeV: 1.0},
	"Fe-58(n,gamma)Fe-59":    {CrossSectionBarns: 1.3},
	"Y-89(n,gamma)Y-90":      {CrossSectionBarns: 1.28},
	"P-31(n,gamma)P-32":      {CrossSectionBarns: 0.17},
	"Sr-88(n,gamma)Sr-89":    {CrossSectionBarns: 0.0058},
	"Te-130(n,gamma)Te-131":  {CrossSectionBarns: 0.29},
	"Er-168(n,gamma)Er-169":  {CrossSectionBarns: 2.3},
	"Tm-169(n,gamma)Tm-170":  {CrossSectionBarns: 105},
	"Eu-151(n,gamma)Eu-152":  {CrossSectionBarns: 9200},
	"Ag-109(n,gamma)Ag-110m": {CrossSectionBarns: 4.7},
}

// Impurity-specific values that differ from, or are missing in, the pathway
// table.
var builtinImpurityCrossSections = map[string]float64{
	"Zn-68(n,p)Cu-68":       0.0093,
	"Zn-66(n,p)Cu-66":       0.0066,
	"Lu-175(n,gamma)Lu-176": 23.1,
}
