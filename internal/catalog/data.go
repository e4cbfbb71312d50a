package catalog

// Default returns the built-in vendor catalog.
func Default() *Catalog {
	return New(defaultVendors...)
}

func good(desc string, minQty, maxQty int, minPrice, maxPrice int64) Entry {
	return Entry{Description: desc, MinQty: minQty, MaxQty: maxQty, MinUnitPrice: minPrice, MaxUnitPrice: maxPrice, Kind: KindGood}
}

func service(desc string, minQty, maxQty int, minPrice, maxPrice int64) Entry {
	return Entry{Description: desc, MinQty: minQty, MaxQty: maxQty, MinUnitPrice: minPrice, MaxUnitPrice: maxPrice, Kind: KindService}
}

func flexible(desc string, minPrice, maxPrice int64) Entry {
	return Entry{Description: desc, MinQty: 1, MaxQty: 1, MinUnitPrice: minPrice, MaxUnitPrice: maxPrice, Flexible: true, Kind: KindService}
}

var defaultVendors = []Vendor{
	{
		Name:     "Summit Office Supply",
		Category: CategorySupplies,
		Entries: []Entry{
			good("Copy paper, case (10 reams)", 5, 120, 4299, 5899),
			good("Toner cartridge, high yield", 2, 40, 8999, 21999),
			good("Ergonomic task chair", 1, 25, 18900, 42900),
			good("Filing cabinet, 4-drawer", 1, 10, 24900, 61900),
			good("Desk organizer set", 5, 60, 1899, 4599),
			good("Whiteboard, 4x6 ft", 1, 15, 12900, 28900),
			flexible("Delivery and assembly", 5000, 250000),
		},
	},
	{
		Name:     "Brightline Janitorial Co",
		Category: CategoryFacilities,
		Entries: []Entry{
			service("Nightly cleaning visit", 10, 31, 18500, 42000),
			service("Carpet extraction, per 1,000 sq ft", 2, 40, 9500, 18500),
			good("Restroom consumables restock", 4, 30, 6500, 14500),
			service("Window washing, exterior", 1, 4, 85000, 240000),
			flexible("Supplemental labor", 15000, 600000),
		},
	},
	{
		Name:     "Cobalt Network Solutions",
		Category: CategoryTechnology,
		Entries: []Entry{
			good("Managed switch, 48-port", 1, 12, 189900, 459900),
			good("Wireless access point", 2, 30, 34900, 89900),
			good("Cat6 patch cable, 50 pack", 1, 20, 12900, 24900),
			service("Network engineer, hourly", 4, 120, 12500, 22500),
			service("Firewall subscription, monthly", 1, 12, 45000, 135000),
			flexible("Project implementation fee", 50000, 2500000),
		},
	},
	{
		Name:     "Redwood Legal Partners LLP",
		Category: CategoryProfessional,
		Entries: []Entry{
			service("Partner time, hourly", 1, 60, 45000, 85000),
			service("Associate time, hourly", 5, 150, 22500, 39500),
			service("Paralegal time, hourly", 5, 120, 9500, 16500),
			good("Filing and court fees", 1, 10, 3500, 45000),
			flexible("Disbursements and costs", 2500, 400000),
		},
	},
	{
		Name:     "Harbor Freight Logistics",
		Category: CategoryLogistics,
		Entries: []Entry{
			service("LTL freight shipment", 1, 40, 28500, 125000),
			service("Pallet storage, monthly", 10, 200, 1800, 4500),
			service("Expedited courier run", 1, 30, 7500, 32500),
			good("Shrink wrap, roll", 5, 80, 2299, 4899),
			flexible("Fuel surcharge", 2500, 350000),
		},
	},
	{
		Name:     "Pinnacle Marketing Group",
		Category: CategoryMarketing,
		Entries: []Entry{
			service("Campaign strategy retainer", 1, 3, 350000, 950000),
			service("Creative design, hourly", 5, 80, 9500, 17500),
			good("Printed brochures, 1,000 ct", 1, 20, 42000, 98000),
			service("Paid media management", 1, 6, 150000, 450000),
			good("Trade show banner", 1, 8, 18500, 52000),
			flexible("Media spend pass-through", 25000, 2500000),
		},
	},
	{
		Name:     "Keystone Electric Utility",
		Category: CategoryUtilities,
		Entries: []Entry{
			service("Electric service, kWh block", 20, 400, 1250, 2150),
			service("Demand charge", 1, 3, 45000, 185000),
			service("Meter service fee", 1, 3, 2500, 7500),
			flexible("Usage adjustment", 1000, 450000),
		},
	},
	{
		Name:     "Clearwater Municipal Water",
		Category: CategoryUtilities,
		Entries: []Entry{
			service("Water usage, per 1,000 gal", 10, 300, 650, 1450),
			service("Sewer service charge", 1, 3, 12500, 48500),
			service("Stormwater fee", 1, 3, 4500, 16500),
			flexible("Usage true-up", 1000, 250000),
		},
	},
	{
		Name:     "Atlas Facility Maintenance",
		Category: CategoryFacilities,
		Entries: []Entry{
			service("HVAC preventive maintenance visit", 1, 12, 45000, 125000),
			good("Air filter, MERV 13", 10, 120, 1899, 4299),
			service("Plumbing repair, hourly", 2, 40, 11500, 18500),
			good("LED fixture retrofit kit", 5, 80, 6900, 15900),
			service("Emergency call-out", 1, 6, 25000, 65000),
			flexible("Parts and materials", 5000, 900000),
		},
	},
	{
		Name:     "Vertex Software Inc",
		Category: CategoryTechnology,
		Entries: []Entry{
			service("Enterprise license, per seat", 10, 250, 4500, 18500),
			service("Premium support plan", 1, 4, 150000, 650000),
			service("Implementation services, daily", 1, 20, 125000, 225000),
			service("Training session", 1, 10, 45000, 120000),
			flexible("Usage overage", 5000, 1500000),
		},
	},
	{
		Name:     "Meridian Staffing Services",
		Category: CategoryProfessional,
		Entries: []Entry{
			service("Temporary clerk, hourly", 20, 320, 2450, 3850),
			service("Temporary accountant, hourly", 20, 240, 4500, 7500),
			service("Placement fee", 1, 3, 250000, 850000),
			flexible("Overtime and adjustments", 5000, 800000),
		},
	},
	{
		Name:     "Granite Peak Construction",
		Category: CategoryFacilities,
		Entries: []Entry{
			service("General labor, hourly", 20, 400, 5500, 8500),
			good("Drywall sheet, 4x8", 20, 300, 1499, 2499),
			good("Commercial door assembly", 1, 12, 65000, 185000),
			service("Project supervision, daily", 2, 30, 55000, 95000),
			good("Paint, 5 gallon", 5, 60, 15900, 26900),
			flexible("Change order", 25000, 4500000),
		},
	},
	{
		Name:     "Lakeside Catering",
		Category: CategoryGeneral,
		Entries: []Entry{
			good("Boxed lunch", 20, 300, 1450, 2450),
			good("Breakfast platter", 2, 30, 8500, 18500),
			service("Event staffing, hourly", 4, 60, 3500, 5500),
			good("Beverage service, per guest", 20, 300, 350, 850),
			flexible("Service charge", 2500, 250000),
		},
	},
	{
		Name:     "Northwind Industrial Parts",
		Category: CategorySupplies,
		Entries: []Entry{
			good("Bearing assembly", 5, 200, 2899, 8999),
			good("Hydraulic hose, 10 ft", 2, 80, 4599, 11999),
			good("Safety gloves, case", 5, 100, 3299, 6499),
			good("Drive belt", 5, 150, 1899, 5499),
			good("Lubricant, 5 gallon pail", 2, 40, 12900, 24900),
			good("Replacement motor, 5 HP", 1, 6, 89900, 189900),
			flexible("Freight and handling", 2500, 300000),
		},
	},
	{
		Name:     "Sterling Audit Advisory",
		Category: CategoryProfessional,
		Entries: []Entry{
			service("Engagement partner, hourly", 2, 40, 39500, 62500),
			service("Senior consultant, hourly", 10, 160, 18500, 29500),
			service("Staff consultant, hourly", 10, 200, 9500, 15500),
			flexible("Out-of-pocket expenses", 2500, 350000),
		},
	},
	{
		Name:     "Blue Ridge Telecom",
		Category: CategoryUtilities,
		Entries: []Entry{
			service("Fiber circuit, monthly", 1, 6, 85000, 245000),
			service("Mobile line, monthly", 10, 150, 3500, 7500),
			good("Handset", 2, 40, 39900, 109900),
			service("Long distance usage", 1, 3, 2500, 45000),
			flexible("Taxes and regulatory recovery", 1000, 150000),
		},
	},
	{
		Name:     "Evergreen Landscaping",
		Category: CategoryFacilities,
		Entries: []Entry{
			service("Grounds maintenance visit", 2, 20, 28500, 65000),
			good("Mulch, cubic yard", 5, 80, 3900, 6500),
			service("Snow removal event", 1, 15, 35000, 95000),
			good("Seasonal plantings, flat", 5, 60, 2800, 5500),
			flexible("Irrigation repairs", 5000, 300000),
		},
	},
	{
		Name:     "Quantum Print & Mail",
		Category: CategoryMarketing,
		Entries: []Entry{
			good("Statement printing, per 1,000", 1, 60, 18500, 42500),
			service("Presort postage", 1, 20, 45000, 325000),
			good("Envelopes, #10 window, case", 2, 40, 5900, 10900),
			service("Data processing fee", 1, 6, 12500, 45000),
			flexible("Postage true-up", 1000, 500000),
		},
	},
	{
		Name:     "Ironclad Security Services",
		Category: CategoryFacilities,
		Entries: []Entry{
			service("Security officer, hourly", 40, 720, 2850, 4450),
			service("Alarm monitoring, monthly", 1, 6, 7500, 24500),
			good("Access badge", 10, 200, 450, 1250),
			service("Patrol vehicle service", 1, 20, 18500, 42500),
			flexible("Holiday premium", 2500, 300000),
		},
	},
	{
		Name:     "Apex Payroll Services",
		Category: CategoryPayroll,
		Entries: []Entry{
			service("Payroll processing, per employee", 20, 400, 450, 1250),
			service("Temporary payroll staff, hourly", 40, 600, 2850, 4250),
			service("Year-end tax filing", 1, 2, 45000, 125000),
			flexible("Payroll service period charge", 50000, 6000000),
		},
	},
	{
		Name:     "Crestview Workforce Solutions",
		Category: CategoryPayroll,
		Entries: []Entry{
			service("Contract staff, hourly", 40, 800, 3250, 5250),
			service("Benefits administration, per employee", 20, 400, 850, 1850),
			service("Onboarding fee", 1, 20, 7500, 19500),
			flexible("Staffing period charge", 50000, 6000000),
		},
	},
	{
		Name:     "Harmon HR & Payroll",
		Category: CategoryPayroll,
		Entries: []Entry{
			service("Leased employee, hourly", 40, 800, 2950, 4950),
			service("Payroll processing, per run", 1, 6, 25000, 65000),
			flexible("Service period billing", 50000, 6000000),
		},
	},
}
