package met

// mec26 was generated by mec with a 26% gammon rate for equal players.
// Entry [i][j] is the probability of winning the match when the side
// concerned needs i+1 points and the other side j+1.
var mec26 = [25][25]float64{
	{0.500, 0.685, 0.750, 0.818, 0.842, 0.892, 0.909, 0.936, 0.946, 0.962, 0.968, 0.978, 0.981, 0.987, 0.989, 0.992, 0.993, 0.995, 0.996, 0.997, 0.998, 0.998, 0.999, 0.999, 0.999},
	{0.315, 0.500, 0.595, 0.664, 0.737, 0.795, 0.835, 0.869, 0.896, 0.919, 0.935, 0.949, 0.959, 0.969, 0.975, 0.981, 0.984, 0.988, 0.990, 0.993, 0.994, 0.995, 0.996, 0.997, 0.998},
	{0.250, 0.405, 0.500, 0.571, 0.646, 0.710, 0.758, 0.800, 0.835, 0.867, 0.890, 0.911, 0.927, 0.942, 0.952, 0.962, 0.969, 0.975, 0.980, 0.984, 0.987, 0.990, 0.992, 0.993, 0.995},
	{0.182, 0.336, 0.429, 0.500, 0.575, 0.640, 0.694, 0.739, 0.781, 0.817, 0.847, 0.872, 0.894, 0.912, 0.927, 0.940, 0.950, 0.960, 0.967, 0.973, 0.978, 0.982, 0.985, 0.988, 0.990},
	{0.158, 0.263, 0.354, 0.425, 0.500, 0.567, 0.623, 0.673, 0.720, 0.761, 0.796, 0.827, 0.853, 0.876, 0.895, 0.912, 0.926, 0.939, 0.949, 0.958, 0.965, 0.971, 0.976, 0.980, 0.984},
	{0.108, 0.205, 0.290, 0.360, 0.433, 0.500, 0.559, 0.612, 0.662, 0.706, 0.746, 0.780, 0.811, 0.838, 0.861, 0.882, 0.900, 0.915, 0.928, 0.939, 0.949, 0.957, 0.964, 0.970, 0.975},
	{0.091, 0.165, 0.242, 0.306, 0.377, 0.441, 0.500, 0.553, 0.605, 0.652, 0.694, 0.732, 0.766, 0.797, 0.824, 0.848, 0.869, 0.888, 0.904, 0.918, 0.930, 0.940, 0.949, 0.957, 0.964},
	{0.064, 0.131, 0.200, 0.261, 0.327, 0.388, 0.447, 0.500, 0.552, 0.600, 0.645, 0.685, 0.722, 0.755, 0.785, 0.812, 0.836, 0.858, 0.877, 0.894, 0.908, 0.921, 0.932, 0.942, 0.951},
	{0.054, 0.104, 0.165, 0.219, 0.280, 0.338, 0.395, 0.448, 0.500, 0.549, 0.595, 0.637, 0.676, 0.712, 0.745, 0.774, 0.801, 0.825, 0.847, 0.867, 0.884, 0.899, 0.913, 0.924, 0.935},
	{0.038, 0.081, 0.133, 0.183, 0.239, 0.294, 0.348, 0.400, 0.451, 0.500, 0.547, 0.590, 0.631, 0.669, 0.703, 0.735, 0.765, 0.791, 0.816, 0.838, 0.857, 0.875, 0.891, 0.905, 0.917},
	{0.032, 0.065, 0.110, 0.153, 0.204, 0.254, 0.306, 0.355, 0.405, 0.453, 0.500, 0.544, 0.586, 0.625, 0.662, 0.695, 0.727, 0.756, 0.782, 0.807, 0.829, 0.848, 0.866, 0.883, 0.897},
	{0.022, 0.051, 0.089, 0.128, 0.173, 0.220, 0.268, 0.315, 0.363, 0.410, 0.456, 0.500, 0.542, 0.582, 0.620, 0.656, 0.689, 0.720, 0.748, 0.774, 0.798, 0.820, 0.840, 0.859, 0.875},
	{0.019, 0.041, 0.073, 0.106, 0.147, 0.189, 0.234, 0.278, 0.324, 0.369, 0.414, 0.458, 0.500, 0.540, 0.579, 0.616, 0.650, 0.682, 0.713, 0.741, 0.767, 0.791, 0.813, 0.833, 0.851},
	{0.013, 0.031, 0.058, 0.088, 0.124, 0.162, 0.203, 0.245, 0.288, 0.331, 0.375, 0.418, 0.460, 0.500, 0.539, 0.576, 0.612, 0.645, 0.677, 0.706, 0.734, 0.760, 0.784, 0.805, 0.826},
	{0.011, 0.025, 0.048, 0.073, 0.105, 0.139, 0.176, 0.215, 0.255, 0.297, 0.338, 0.380, 0.421, 0.461, 0.500, 0.538, 0.574, 0.608, 0.641, 0.672, 0.701, 0.728, 0.753, 0.777, 0.799},
	{0.008, 0.019, 0.038, 0.060, 0.088, 0.118, 0.152, 0.188, 0.226, 0.265, 0.305, 0.344, 0.384, 0.424, 0.462, 0.500, 0.536, 0.571, 0.605, 0.637, 0.667, 0.695, 0.722, 0.747, 0.771},
	{0.007, 0.016, 0.031, 0.050, 0.074, 0.100, 0.131, 0.164, 0.199, 0.235, 0.273, 0.311, 0.350, 0.388, 0.426, 0.464, 0.500, 0.535, 0.569, 0.602, 0.633, 0.663, 0.691, 0.717, 0.742},
	{0.005, 0.012, 0.025, 0.040, 0.061, 0.085, 0.112, 0.142, 0.175, 0.209, 0.244, 0.280, 0.318, 0.355, 0.392, 0.429, 0.465, 0.500, 0.534, 0.567, 0.599, 0.630, 0.659, 0.686, 0.712},
	{0.004, 0.010, 0.020, 0.033, 0.051, 0.072, 0.096, 0.123, 0.153, 0.184, 0.218, 0.252, 0.287, 0.323, 0.359, 0.395, 0.431, 0.466, 0.500, 0.533, 0.566, 0.597, 0.626, 0.655, 0.682},
	{0.003, 0.007, 0.016, 0.027, 0.042, 0.061, 0.082, 0.106, 0.133, 0.162, 0.193, 0.226, 0.259, 0.294, 0.328, 0.363, 0.398, 0.433, 0.467, 0.500, 0.532, 0.564, 0.594, 0.623, 0.651},
	{0.002, 0.006, 0.013, 0.022, 0.035, 0.051, 0.070, 0.092, 0.116, 0.143, 0.171, 0.202, 0.233, 0.266, 0.299, 0.333, 0.367, 0.401, 0.434, 0.468, 0.500, 0.532, 0.562, 0.592, 0.621},
	{0.002, 0.005, 0.010, 0.018, 0.029, 0.043, 0.060, 0.079, 0.101, 0.125, 0.152, 0.180, 0.209, 0.240, 0.272, 0.305, 0.337, 0.370, 0.403, 0.436, 0.468, 0.500, 0.531, 0.561, 0.590},
	{0.001, 0.004, 0.008, 0.015, 0.024, 0.036, 0.051, 0.068, 0.087, 0.109, 0.134, 0.160, 0.187, 0.216, 0.247, 0.278, 0.309, 0.341, 0.374, 0.406, 0.438, 0.469, 0.500, 0.530, 0.560},
	{0.001, 0.003, 0.007, 0.012, 0.020, 0.030, 0.043, 0.058, 0.076, 0.095, 0.117, 0.141, 0.167, 0.195, 0.223, 0.253, 0.283, 0.314, 0.345, 0.377, 0.408, 0.439, 0.470, 0.500, 0.530},
	{0.001, 0.002, 0.005, 0.010, 0.016, 0.025, 0.036, 0.049, 0.065, 0.083, 0.103, 0.125, 0.149, 0.174, 0.201, 0.229, 0.258, 0.288, 0.318, 0.349, 0.379, 0.410, 0.440, 0.470, 0.500},
}

// snowie overrides the first 15x15 block of mec26.
var snowie = [15][15]float64{
	{.500, .685, .748, .819, .843, .891, .907, .935, .944, .961, .967, .977, .980, .986, .988},
	{.315, .500, .594, .664, .735, .791, .832, .866, .893, .916, .932, .947, .957, .967, .973},
	{.252, .406, .500, .572, .645, .707, .755, .797, .832, .863, .887, .908, .924, .939, .950},
	{.181, .336, .428, .500, .573, .637, .690, .736, .777, .813, .843, .868, .890, .909, .924},
	{.157, .265, .355, .427, .500, .565, .621, .671, .716, .757, .792, .823, .849, .872, .892},
	{.109, .209, .293, .363, .435, .500, .558, .610, .659, .703, .742, .777, .807, .834, .857},
	{.093, .168, .245, .310, .379, .442, .500, .552, .603, .649, .691, .729, .762, .793, .820},
	{.065, .134, .203, .264, .329, .390, .448, .500, .551, .598, .642, .682, .718, .752, .781},
	{.056, .107, .168, .223, .284, .341, .397, .449, .500, .548, .593, .634, .673, .709, .741},
	{.039, .084, .137, .187, .243, .297, .351, .402, .452, .500, .546, .588, .628, .666, .700},
	{.033, .068, .113, .157, .208, .258, .309, .358, .407, .454, .500, .543, .584, .623, .659},
	{.023, .053, .092, .132, .177, .223, .271, .318, .366, .412, .457, .500, .542, .581, .618},
	{.020, .043, .076, .110, .151, .193, .238, .282, .327, .372, .416, .458, .500, .540, .578},
	{.014, .033, .061, .091, .128, .166, .207, .248, .291, .334, .377, .419, .460, .500, .538},
	{.012, .027, .050, .076, .108, .143, .180, .219, .259, .300, .341, .382, .422, .462, .500},
}

// postCrawford[i] is the probability of winning for the trailer needing
// i+1 points against an opponent at 1-away, after the Crawford game.
var postCrawford = [MaxAway - 1]float64{
	0.50000, 0.484988779204, 0.3195, 0.302313595788,
	0.18935485, 0.175375581897, 0.11368904122, 0.104665411717,
	0.067397551901, 0.0615931228385, 0.039882714542, 0.0368401457886,
	0.023532346981, 0.0220564138613, 0.0143039149194, 0.0128627481489,
	0.00849200040717, 0.00770736867884, 0.00509230940013, 0.0046016493719,
	0.00305933550471, 0.00272992874382, 0.0018220307613, 0.00164332944811,
}
